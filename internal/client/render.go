package client

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"pollchat/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderChat prints the chat view
func RenderChat(w io.Writer, msgs []model.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, color.FgDarkGray.Render("No messages yet. Be the first to send one!"))
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "%s  %s\n%s\n\n",
			color.FgBlue.Render(m.Name),
			color.FgDarkGray.Render(m.CreatedAt.Local().Format(timeLayout)),
			m.Content,
		)
	}
}

// RenderAdmin prints the admin table; status reports each row's delete state
func RenderAdmin(w io.Writer, msgs []model.Message, status func(id string) RowStatus) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Message", "Date", "Actions"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(lo.Map(msgs, func(m model.Message, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			m.Name,
			m.Content,
			m.CreatedAt.Local().Format(timeLayout),
			actionLabel(status(m.ID)),
		}
	}))
	table.Render()
}

func actionLabel(s RowStatus) string {
	switch s {
	case StatusDeleting:
		return "Deleting..."
	case StatusFailed:
		return "Error! Try again"
	default:
		return "Remove"
	}
}

// SameMessages reports whether two lists hold the same ids in the same order
func SameMessages(a, b []model.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
