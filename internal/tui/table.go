package tui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"inventory-tracker/internal/viewmodel"
)

const (
	skeletonIndex   = "░░"
	skeletonCell    = "░░░░░░░░"
	welcomeMessage  = "Welcome, Please Login"
	loadFailMessage = "Failed to load product table data"
	emptyMessage    = "No Data Found"
)

// RenderWelcome prints the signed-out screen.
func RenderWelcome(w io.Writer) {
	fmt.Fprintln(w, welcomeMessage)
}

// RenderProductTable prints the product table for v followed by the pagination bar.
func RenderProductTable(w io.Writer, v viewmodel.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tProduct Name\tQuantity\t")

	switch {
	case v.State == viewmodel.StateLoading:
		for i := 0; i < viewmodel.PageSize; i++ {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", skeletonIndex, skeletonCell, skeletonCell)
		}
	case v.State == viewmodel.StateError:
		fmt.Fprintln(tw, loadFailMessage)
		if v.Err != "" {
			fmt.Fprintln(tw, v.Err)
		}
	case len(v.Rows) == 0:
		fmt.Fprintln(tw, emptyMessage)
	default:
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t\n", r.Index, r.ProductName, r.ProductCount)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, PaginationBar(v.CurrentPage, v.TotalPages))
	return err
}

// PaginationBar renders e.g. "Previous 1 … 4 [5] 6 … 10 Next".
func PaginationBar(current, total int) string {
	parts := []string{"Previous"}
	for _, item := range viewmodel.PageWindow(current, total) {
		switch {
		case item.Ellipsis:
			parts = append(parts, "…")
		case item.Current:
			parts = append(parts, fmt.Sprintf("[%d]", item.Page))
		default:
			parts = append(parts, fmt.Sprint(item.Page))
		}
	}
	parts = append(parts, "Next")
	return strings.Join(parts, " ")
}
