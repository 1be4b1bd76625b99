package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/pkg/validator"

	"github.com/shopspring/decimal"
)

type apiError struct{ msg string }

func (e *apiError) Error() string      { return "500: " + e.msg }
func (e *apiError) APIMessage() string { return e.msg }

// fakeAPI serves products from a slice, paginated like the server.
type fakeAPI struct {
	mu       sync.Mutex
	products []dto.ProductResponse
	listErr  error
	// beforeList runs before a list call answers; it may block.
	beforeList func(query dto.ProductQuery)
	queries    []dto.ProductQuery
	updates    []dto.UpdateProductRequest
	creates    []string
	deletes    []string
	mutateErr  error
}

func newFakeAPI(n int) *fakeAPI {
	api := &fakeAPI{}
	for i := 1; i <= n; i++ {
		api.products = append(api.products, dto.ProductResponse{
			Name:  fmt.Sprintf("item-%02d", i),
			Count: json.Number(fmt.Sprint(i)),
		})
	}
	return api
}

func (f *fakeAPI) ListProducts(_ context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	hook := f.beforeList
	f.mu.Unlock()
	if hook != nil {
		hook(query)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []dto.ProductResponse
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Search)) {
			matched = append(matched, p)
		}
	}
	start := (query.Page - 1) * query.Limit
	end := start + query.Limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	total := len(matched)
	return &dto.ProductListResponse{
		Products:    append([]dto.ProductResponse{}, matched[start:end]...),
		CurrentPage: query.Page,
		TotalPages:  (total + query.Limit - 1) / query.Limit,
		TotalItems:  int64(total),
	}, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, name string, count decimal.Decimal) (*dto.ProductResponse, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, false, f.mutateErr
	}
	f.creates = append(f.creates, name+"="+count.String())
	return &dto.ProductResponse{Name: name, Count: json.Number(count.String())}, true, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.updates = append(f.updates, req)
	return &dto.ProductResponse{Name: req.Name}, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return "", f.mutateErr
	}
	f.deletes = append(f.deletes, name)
	return "Product deleted successfully", nil
}

func (f *fakeAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fixedConfirmer bool

func (c fixedConfirmer) Confirm(string) bool { return bool(c) }

func TestRefreshBuildsRows(t *testing.T) {
	api := newFakeAPI(23)
	list := NewProductList(api)
	ctx := context.Background()

	if err := list.GoToPage(ctx, 1); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := list.GoToPage(ctx, 3); err != nil {
		t.Fatalf("go to page: %v", err)
	}

	v := list.View()
	if v.State != StateReady || v.CurrentPage != 3 || v.TotalPages != 3 || v.TotalItems != 23 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if len(v.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(v.Rows))
	}
	first := v.Rows[0]
	if first.Index != 21 || first.ProductName != "item-21" || first.ProductCount != "21" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.EditProduct != "item-21-21" || first.DeleteProduct != "item-21" {
		t.Fatalf("unexpected row tokens: %+v", first)
	}
	if q := api.queries[len(api.queries)-1]; q.Limit != PageSize || q.Page != 3 {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestPageNavigationBounds(t *testing.T) {
	api := newFakeAPI(15)
	list := NewProductList(api)
	ctx := context.Background()
	if err := list.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := list.PrevPage(ctx); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected prev to be blocked on page 1, got %v", err)
	}
	if err := list.NextPage(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if v := list.View(); v.CurrentPage != 2 || v.CanNext() || !v.CanPrev() {
		t.Fatalf("unexpected view after next: %+v", v)
	}
	if err := list.NextPage(ctx); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected next to be blocked on last page, got %v", err)
	}
	if err := list.GoToPage(ctx, 3); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected page 3 to be rejected, got %v", err)
	}
	if err := list.GoToPage(ctx, 0); !errors.Is(err, ErrPageOutOfRange) {
		t.Fatalf("expected page 0 to be rejected, got %v", err)
	}
}

func TestSetSearchResetsPage(t *testing.T) {
	api := newFakeAPI(25)
	list := NewProductList(api)
	ctx := context.Background()
	_ = list.Refresh(ctx)
	_ = list.GoToPage(ctx, 3)

	if err := list.SetSearch(ctx, "item-1"); err != nil {
		t.Fatalf("search: %v", err)
	}
	v := list.View()
	if v.CurrentPage != 1 || v.Search != "item-1" || v.TotalItems != 10 {
		t.Fatalf("unexpected view after search: %+v", v)
	}
}

func TestFetchErrorKeepsRows(t *testing.T) {
	api := newFakeAPI(5)
	list := NewProductList(api)
	ctx := context.Background()
	_ = list.Refresh(ctx)

	api.mu.Lock()
	api.listErr = &apiError{msg: "Internal Server Error"}
	api.mu.Unlock()

	if err := list.Refresh(ctx); err == nil {
		t.Fatalf("expected error")
	}
	v := list.View()
	if v.State != StateError || v.Err != "Internal Server Error" {
		t.Fatalf("unexpected error view: %+v", v)
	}
	if len(v.Rows) != 5 {
		t.Fatalf("expected prior rows to be kept, got %d", len(v.Rows))
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	api := newFakeAPI(30)
	list := NewProductList(api)
	ctx := context.Background()
	_ = list.Refresh(ctx)

	release := make(chan struct{})
	started := make(chan struct{})
	api.mu.Lock()
	api.beforeList = func(q dto.ProductQuery) {
		if q.Page == 2 {
			close(started)
			<-release
		}
	}
	api.mu.Unlock()

	done := make(chan error)
	go func() { done <- list.GoToPage(ctx, 2) }()
	<-started

	if v := list.View(); v.State != StateLoading {
		t.Fatalf("expected loading while in flight, got %v", v.State)
	}

	// a newer request completes first
	if err := list.GoToPage(ctx, 3); err != nil {
		t.Fatalf("go to page 3: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stale fetch: %v", err)
	}

	v := list.View()
	if v.CurrentPage != 3 || v.Rows[0].Index != 21 {
		t.Fatalf("stale response overwrote newer state: %+v", v)
	}
}

func TestPageWindow(t *testing.T) {
	render := func(items []PageItem) string {
		var parts []string
		for _, it := range items {
			switch {
			case it.Ellipsis:
				parts = append(parts, "…")
			case it.Current:
				parts = append(parts, fmt.Sprintf("[%d]", it.Page))
			default:
				parts = append(parts, fmt.Sprint(it.Page))
			}
		}
		return strings.Join(parts, " ")
	}

	tests := []struct {
		current, total int
		want           string
	}{
		{1, 0, "[1]"},
		{1, 1, "[1]"},
		{1, 2, "[1] 2"},
		{2, 2, "1 [2]"},
		{1, 10, "[1] 2 … 10"},
		{5, 10, "1 … 4 [5] 6 … 10"},
		{3, 10, "1 2 [3] 4 … 10"},
		{10, 10, "1 … 9 [10]"},
		{4, 5, "1 … 3 [4] 5"},
		{3, 5, "1 2 [3] 4 5"},
	}
	for _, tt := range tests {
		if got := render(PageWindow(tt.current, tt.total)); got != tt.want {
			t.Errorf("PageWindow(%d, %d) = %q, want %q", tt.current, tt.total, got, tt.want)
		}
	}
}

func newDialogs(api *fakeAPI, confirm bool) (*Dialogs, *ProductList, *recordingNotifier) {
	list := NewProductList(api)
	n := &recordingNotifier{}
	return NewDialogs(api, list, n, fixedConfirmer(confirm), validator.NewValidator()), list, n
}

func TestAddDialog(t *testing.T) {
	ctx := context.Background()

	for _, form := range []AddForm{
		{Name: "", Count: "1"},
		{Name: "x", Count: "-1"},
		{Name: "x", Count: "abc"},
		{Name: "x", Count: ""},
	} {
		api := newFakeAPI(0)
		d, _, n := newDialogs(api, true)
		if err := d.Add(ctx, form); !errors.Is(err, ErrInvalidForm) {
			t.Fatalf("expected ErrInvalidForm for %+v, got %v", form, err)
		}
		if len(api.creates) != 0 || api.listCalls() != 0 {
			t.Fatalf("invalid form must not call the API: %+v", form)
		}
		if len(n.errors) != 1 || n.errors[0] != "Please provide valid name and count" {
			t.Fatalf("unexpected notifications: %+v", n.errors)
		}
	}

	api := newFakeAPI(0)
	d, _, n := newDialogs(api, true)
	if err := d.Add(ctx, AddForm{Name: "Widget", Count: "2.5"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(api.creates) != 1 || api.creates[0] != "Widget=2.5" {
		t.Fatalf("unexpected creates: %v", api.creates)
	}
	if api.listCalls() != 1 || len(n.successes) != 1 {
		t.Fatalf("expected one refetch and one success, got %d / %v", api.listCalls(), n.successes)
	}
}

func TestEditDialog(t *testing.T) {
	ctx := context.Background()
	row := Row{ProductName: "Widget", ProductCount: "8", Count: decimal.NewFromInt(8)}

	api := newFakeAPI(1)
	d, _, n := newDialogs(api, true)

	form := NewEditForm(row)
	if form.Total != "8" {
		t.Fatalf("expected total to default to row count, got %q", form.Total)
	}
	form.Add = "2.5"
	form.Reduce = "0.5"
	form.NewName = "Gadget"

	flags := d.InvalidFields(form)
	if flags["total"] || flags["add"] || flags["reduce"] {
		t.Fatalf("unexpected invalid flags: %v", flags)
	}
	if err := d.Edit(ctx, form); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(api.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(api.updates))
	}
	got := api.updates[0]
	if got.Name != "Widget" || got.NewName != "Gadget" || got.Count.String() != "10" {
		t.Fatalf("unexpected update request: %+v count=%s", got, got.Count)
	}
	if api.listCalls() != 1 || len(n.successes) != 1 {
		t.Fatalf("expected refetch after edit")
	}

	bad := NewEditForm(row)
	bad.Add = "1.1234567890123456789"
	bad.Reduce = "x"
	flags = d.InvalidFields(bad)
	if flags["total"] || !flags["add"] || !flags["reduce"] {
		t.Fatalf("unexpected invalid flags: %v", flags)
	}
	if d.CanSubmit(bad) {
		t.Fatalf("submit must be disabled with invalid fields")
	}
	if err := d.Edit(ctx, bad); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	if len(api.updates) != 1 {
		t.Fatalf("invalid form must not call the API")
	}
}

func TestEditDialogServerError(t *testing.T) {
	api := newFakeAPI(1)
	api.mutateErr = &apiError{msg: "At least one change is required"}
	d, list, n := newDialogs(api, true)
	_ = list.Refresh(context.Background())
	before := api.listCalls()

	form := NewEditForm(Row{ProductName: "Widget", ProductCount: "8"})
	if err := d.Edit(context.Background(), form); err == nil {
		t.Fatalf("expected error")
	}
	if len(n.errors) != 1 || n.errors[0] != "At least one change is required" {
		t.Fatalf("unexpected notifications: %v", n.errors)
	}
	if api.listCalls() != before {
		t.Fatalf("failed mutation must not refetch")
	}
}

func TestEditDialogNegativeCount(t *testing.T) {
	ctx := context.Background()
	row := Row{ProductName: "Widget", ProductCount: "-3", Count: decimal.NewFromInt(-3)}

	api := newFakeAPI(1)
	d, _, _ := newDialogs(api, true)

	form := NewEditForm(row)
	form.NewName = "Gadget"
	if !d.CanSubmit(form) {
		t.Fatalf("rename of a negative count must be allowed, invalid: %v", d.InvalidFields(form))
	}
	if err := d.Edit(ctx, form); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got := api.updates[0]
	if got.NewName != "Gadget" || got.Count.String() != "-3" {
		t.Fatalf("unexpected update request: %+v count=%s", got, got.Count)
	}

	typed := NewEditForm(row)
	typed.Total = "-4"
	if d.CanSubmit(typed) || !d.InvalidFields(typed)["total"] {
		t.Fatalf("a typed negative total must be rejected")
	}

	long := NewEditForm(row)
	long.NewName = strings.Repeat("n", 256)
	if d.CanSubmit(long) || !d.InvalidFields(long)["newName"] {
		t.Fatalf("a new name over 255 characters must be rejected")
	}
}

func TestDeleteDialog(t *testing.T) {
	ctx := context.Background()
	row := Row{ProductName: "Widget", DeleteProduct: "Widget"}

	api := newFakeAPI(1)
	d, _, _ := newDialogs(api, false)
	if err := d.Delete(ctx, row); err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if len(api.deletes) != 0 || api.listCalls() != 0 {
		t.Fatalf("declined delete must do nothing")
	}

	api = newFakeAPI(1)
	d, _, n := newDialogs(api, true)
	if err := d.Delete(ctx, row); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0] != "Widget" {
		t.Fatalf("unexpected deletes: %v", api.deletes)
	}
	if len(n.successes) != 1 || n.successes[0] != "Product deleted successfully" || api.listCalls() != 1 {
		t.Fatalf("expected success notification and refetch")
	}
}
