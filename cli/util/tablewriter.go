/*
tablewriter.go

MIT License

Copyright (c) Foxglove Technologies Inc

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

/*
 Derived from https://github.com/foxglove/foxglove-cli/blob/main/foxglove/util/tablewriter/tablewriter.go
*/

package util

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func columnWidths(headers []string, data [][]string) (int, []int) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header) + 4 // pad two spaces each side
	}
	for _, row := range data {
		for i, column := range row {
			widths[i] = max(widths[i], len(column)+2)
		}
	}
	// headers are centered, so widths must leave even padding.
	for i, header := range headers {
		if (widths[i]-len(header))%2 == 1 {
			widths[i]++
		}
	}
	total := len(headers) + 1
	for _, width := range widths {
		total += width
	}
	return total, widths
}

/*
printGrid outputs a table of records formatted like this:
|  name  | version |  count  |
|--------|---------|---------|
| ref    | 3       | 4       |
| pair   | 5       | 2       |
*/
func printGrid(w io.Writer, headers []string, data [][]string) {
	_, widths := columnWidths(headers, data)
	fmt.Fprint(w, "|")
	for i, header := range headers {
		padding := strings.Repeat(" ", (widths[i]-len(header))/2)
		fmt.Fprintf(w, "%s%s%s|", padding, header, padding)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, "|")
	for _, width := range widths {
		fmt.Fprintf(w, "%s|", strings.Repeat("-", width))
	}
	fmt.Fprintln(w)
	for _, row := range data {
		fmt.Fprint(w, "|")
		for i, col := range row {
			fmt.Fprintf(w, " %s%s|", col, strings.Repeat(" ", widths[i]-len(col)-1))
		}
		fmt.Fprintln(w)
	}
}

/*
printRecords outputs a series of records formatted like this, for terminals
too narrow for a grid:

	-[ RECORD 1 ]+-----------------------------------
	name         | ref
	version      | 3
	count        | 4
*/
func printRecords(w io.Writer, termwidth int, headers []string, data [][]string) {
	headerWidth := len(fmt.Sprintf("-[ RECORD %d ]", len(data)+1))
	recordWidth := 0
	for _, header := range headers {
		headerWidth = max(headerWidth, len(header))
	}
	for _, row := range data {
		for _, col := range row {
			recordWidth = max(recordWidth, len(col))
		}
	}
	extent := min(recordWidth+15, termwidth-headerWidth-1)
	dashes := strings.Repeat("-", max(extent, 1))
	for i, row := range data {
		title := fmt.Sprintf("-[ RECORD %d ]", i+1)
		fmt.Fprintf(w, "%s%s+%s\n", title, strings.Repeat("-", headerWidth-len(title)), dashes)
		for j, col := range row {
			fmt.Fprintf(w, "%-*s| %s\n", headerWidth, headers[j], col)
		}
	}
}

// TermWidth returns the terminal width advertised by $COLUMNS, or 80.
func TermWidth() int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return 80
}

// PrintTable writes data as a grid if it fits in termwidth columns, and as a
// list of records otherwise.
func PrintTable(w io.Writer, termwidth int, headers []string, data [][]string) {
	width, _ := columnWidths(headers, data)
	if termwidth < width {
		printRecords(w, termwidth, headers, data)
		return
	}
	printGrid(w, headers, data)
}
