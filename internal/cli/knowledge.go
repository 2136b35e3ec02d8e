package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dwizi/concierge/internal/knowledge"
)

func newKnowledgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "knowledge",
		Short: "List the canned answers and the keywords that trigger them",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderKnowledge(cmd.OutOrStdout(), knowledge.Default().Entries())
			return nil
		},
	}
}

func renderKnowledge(out io.Writer, entries []knowledge.Entry) {
	rows := lo.Map(entries, func(entry knowledge.Entry, index int) []string {
		return []string{strconv.Itoa(index + 1), strings.Join(entry.Keywords, ", "), entry.Response}
	})
	table := newTable(out, []string{"#", "Keywords", "Response"})
	table.AppendBulk(rows)
	table.Render()
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
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
