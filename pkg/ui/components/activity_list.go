package components

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/lightwalker/pkg/models"
)

// ActivityList shows activity templates under a search box. Selecting a row
// and pressing the add button arms that template for placement.
type ActivityList struct {
	list        *widget.List
	search      *widget.Entry
	all         []models.ActivityTemplate
	items       []models.ActivityTemplate
	selectedIdx int
	query       func(string) []models.ActivityTemplate
	onArm       func(models.ActivityTemplate)
	onRemove    func(models.ActivityTemplate)
	onCustomize func(models.ActivityTemplate)
}

// ActivityListConfig configures the activity list.
type ActivityListConfig struct {
	Query       func(text string) []models.ActivityTemplate // Filters by search text; nil matches titles
	OnArm       func(models.ActivityTemplate)               // Called when an item is armed
	OnRemove    func(models.ActivityTemplate)               // Called when an item is removed
	OnCustomize func(models.ActivityTemplate)               // Called to edit an item's overrides; nil hides the button
}

func NewActivityList(items []models.ActivityTemplate, config ActivityListConfig) (*ActivityList, *fyne.Container) {
	al := &ActivityList{
		all:         items,
		items:       items,
		selectedIdx: -1,
		query:       config.Query,
		onArm:       config.OnArm,
		onRemove:    config.OnRemove,
		onCustomize: config.OnCustomize,
	}

	al.list = widget.NewList(
		func() int {
			return len(al.items)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("template")
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(al.items) {
				o.(*widget.Label).SetText(RenderTemplate(al.items[i]))
			}
		})
	al.list.OnSelected = func(id widget.ListItemID) {
		al.selectedIdx = id
	}

	al.search = widget.NewEntry()
	al.search.SetPlaceHolder("Search activities or traits...")
	al.search.OnChanged = al.Filter

	armButton := widget.NewButtonWithIcon("", theme.ContentAddIcon(), al.ArmSelected)
	removeButton := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), al.RemoveSelected)
	buttons := container.NewHBox(armButton, removeButton)
	if al.onCustomize != nil {
		buttons.Add(widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), al.CustomizeSelected))
	}

	listScroll := container.NewScroll(al.list)
	listScroll.SetMinSize(fyne.NewSize(0, 200))

	listWithBorder := container.NewBorder(
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		listScroll,
	)

	controls := container.NewBorder(nil, nil, nil,
		buttons,
		al.search)

	return al, container.NewBorder(controls, nil, nil, nil, listWithBorder)
}

// RenderTemplate is the one-line list text for a template.
func RenderTemplate(t models.ActivityTemplate) string {
	text := t.Title
	if t.Icon != "" {
		text = t.Icon + " " + text
	}
	return fmt.Sprintf("%s  (%s, %d pts)", text, t.Duration, t.Points)
}

// Filter narrows the visible items to those matching text.
func (al *ActivityList) Filter(text string) {
	switch {
	case text == "":
		al.items = al.all
	case al.query != nil:
		al.items = al.query(text)
	default:
		al.items = matchTitles(al.all, text)
	}
	al.list.UnselectAll()
	al.selectedIdx = -1
	al.list.Refresh()
}

// SetItems replaces the full item set and reapplies the current search.
func (al *ActivityList) SetItems(items []models.ActivityTemplate) {
	al.all = items
	al.Filter(al.search.Text)
}

// Items returns the currently visible items.
func (al *ActivityList) Items() []models.ActivityTemplate {
	return al.items
}

// Select highlights the item at index i.
func (al *ActivityList) Select(i int) {
	al.list.Select(i)
}

// Selected returns the highlighted item.
func (al *ActivityList) Selected() (models.ActivityTemplate, bool) {
	if al.selectedIdx < 0 || al.selectedIdx >= len(al.items) {
		return models.ActivityTemplate{}, false
	}
	return al.items[al.selectedIdx], true
}

// ArmSelected hands the highlighted item to OnArm.
func (al *ActivityList) ArmSelected() {
	if t, ok := al.Selected(); ok && al.onArm != nil {
		al.onArm(t)
	}
}

// CustomizeSelected hands the highlighted item to OnCustomize.
func (al *ActivityList) CustomizeSelected() {
	if t, ok := al.Selected(); ok && al.onCustomize != nil {
		al.onCustomize(t)
	}
}

// RemoveSelected drops the highlighted item from the list.
func (al *ActivityList) RemoveSelected() {
	t, ok := al.Selected()
	if !ok {
		return
	}
	if al.onRemove != nil {
		al.onRemove(t)
	}
	al.all = removeTemplate(al.all, t.ID)
	al.items = removeTemplate(al.items, t.ID)
	al.list.UnselectAll()
	al.selectedIdx = -1
	al.list.Refresh()
}

func removeTemplate(items []models.ActivityTemplate, id string) []models.ActivityTemplate {
	out := make([]models.ActivityTemplate, 0, len(items))
	for _, t := range items {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func matchTitles(items []models.ActivityTemplate, text string) []models.ActivityTemplate {
	needle := strings.ToLower(strings.TrimSpace(text))
	var out []models.ActivityTemplate
	for _, t := range items {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}
