package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"rearcam/internal/core/capture"
)

// SingleChoice is a modal list where picking an item closes the dialog.
type SingleChoice struct {
	dialog   dialog.Dialog
	radio    *widget.RadioGroup
	items    []string
	onSelect func(index int)
}

// NewSingleChoice builds a single-choice dialog with the current selection checked.
func NewSingleChoice(title string, choice capture.Choice, onSelect func(index int), parent fyne.Window) *SingleChoice {
	radio := widget.NewRadioGroup(choice.Items, nil)
	if choice.Selected >= 0 && choice.Selected < len(choice.Items) {
		radio.SetSelected(choice.Items[choice.Selected])
	}

	picker := &SingleChoice{
		radio:    radio,
		items:    choice.Items,
		onSelect: onSelect,
	}

	content := container.NewVScroll(radio)
	content.SetMinSize(fyne.NewSize(260, 220))
	picker.dialog = dialog.NewCustom(title, "Cancel", content, parent)
	radio.OnChanged = picker.handleChanged

	return picker
}

// ShowSingleChoice builds and shows a single-choice dialog.
func ShowSingleChoice(title string, choice capture.Choice, onSelect func(index int), parent fyne.Window) *SingleChoice {
	picker := NewSingleChoice(title, choice, onSelect, parent)
	picker.Show()
	return picker
}

// Show displays the dialog.
func (picker *SingleChoice) Show() {
	picker.dialog.Show()
}

// Hide dismisses the dialog without a selection.
func (picker *SingleChoice) Hide() {
	picker.dialog.Hide()
}

func (picker *SingleChoice) handleChanged(selected string) {
	index := -1
	for position, item := range picker.items {
		if item == selected {
			index = position
			break
		}
	}
	if index < 0 {
		return
	}
	picker.dialog.Hide()
	if picker.onSelect != nil {
		picker.onSelect(index)
	}
}
