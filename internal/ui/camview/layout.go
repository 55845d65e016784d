package camview

import "fyne.io/fyne/v2"

// scaleLayout centers its objects at a fraction of the available size.
type scaleLayout struct {
	scale float32
}

func (layout *scaleLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	scale := layout.scale
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	scaled := fyne.NewSize(size.Width*scale, size.Height*scale)
	position := fyne.NewPos((size.Width-scaled.Width)/2, (size.Height-scaled.Height)/2)
	for _, object := range objects {
		object.Resize(scaled)
		object.Move(position)
	}
}

func (layout *scaleLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	minSize := fyne.NewSize(0, 0)
	for _, object := range objects {
		minSize = minSize.Max(object.MinSize())
	}
	return minSize
}
