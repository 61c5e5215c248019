// Package menu renders nav menus in the terminal.
package menu

import (
	"io"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/terraconstructs/shopadmin/pkg/nav"
)

// Leveled flattens items into a pterm leveled list. The active item is
// marked with an asterisk.
func Leveled(items []nav.Item, active string) pterm.LeveledList {
	var list pterm.LeveledList
	var walk func(items []nav.Item, level int)
	walk = func(items []nav.Item, level int) {
		for _, item := range items {
			text := item.Label
			if item.Path != "" {
				text += "  " + pterm.Gray(item.Path)
			}
			if item.Key == active {
				text = "* " + text
			}
			list = append(list, pterm.LeveledListItem{Level: level, Text: text})
			walk(item.Children, level+1)
		}
	}
	walk(items, 0)
	return list
}

// Print writes items as a tree under title.
func Print(out io.Writer, title string, items []nav.Item, active string) error {
	pterm.DefaultSection.WithWriter(out).Println(title)
	if len(items) == 0 {
		pterm.Info.WithWriter(out).Println("Nothing to show")
		return nil
	}
	root := putils.TreeFromLeveledList(Leveled(items, active))
	return pterm.DefaultTree.WithWriter(out).WithRoot(root).Render()
}
