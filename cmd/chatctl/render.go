package main

import (
	"chat-presence/api"
	"fmt"
	"io"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type renderer struct {
	out     io.Writer
	colours bool
	user    string
}

func (r renderer) paint(style color.Style, s string) string {
	if !r.colours {
		return s
	}
	return style.Render(s)
}

func (r renderer) info(s string) {
	fmt.Fprintln(r.out, r.paint(color.New(color.FgGreen), s))
}

// message prints one line: "(time) from -> to: text".
func (r renderer) message(m api.MessageResponse) {
	line := fmt.Sprintf("(%s) %s -> %s: %s", m.Time, m.From, m.To, m.Text)
	switch {
	case m.Type == "status":
		line = r.paint(color.New(color.FgGray), fmt.Sprintf("(%s) %s", m.Time, m.Text))
	case m.Type == "private_message":
		line = r.paint(color.New(color.FgMagenta), line)
	case m.From == r.user:
		line = r.paint(color.New(color.OpBold), line)
	}
	fmt.Fprintln(r.out, line)
}

func (r renderer) messages(messages []api.MessageResponse) {
	table := r.table([]string{"Time", "From", "To", "Type", "Text", "ID"})
	for _, m := range messages {
		table.Append([]string{m.Time, m.From, m.To, m.Type, m.Text, m.ID})
	}
	table.Render()
}

func (r renderer) participants(participants []api.ParticipantResponse) {
	table := r.table([]string{"Name", "Last seen"})
	for _, p := range participants {
		table.Append([]string{p.Name, time.UnixMilli(p.LastStatus).Format(time.TimeOnly)})
	}
	table.Render()
}

func (r renderer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
