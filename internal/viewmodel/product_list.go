package viewmodel

import (
	"context"
	"errors"
	"sync"

	"inventory-tracker/internal/converter"
	"inventory-tracker/internal/delivery/dto"

	"github.com/shopspring/decimal"
)

// PageSize is the number of rows fetched per page.
const PageSize = 10

var ErrPageOutOfRange = errors.New("page out of range")

// ProductAPI is the part of the inventory API the view-model drives.
type ProductAPI interface {
	ListProducts(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error)
	CreateProduct(ctx context.Context, name string, count decimal.Decimal) (*dto.ProductResponse, bool, error)
	UpdateProduct(ctx context.Context, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, name string) (string, error)
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Row is one rendered table line.
type Row struct {
	Index         int
	ProductName   string
	ProductCount  string
	Count         decimal.Decimal
	EditProduct   string
	DeleteProduct string
}

// View is a consistent copy of the list state.
type View struct {
	Search      string
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	Rows        []Row
	State       State
	Err         string
}

// CanPrev reports whether a previous page exists.
func (v View) CanPrev() bool { return v.CurrentPage > 1 }

// CanNext reports whether a next page exists.
func (v View) CanNext() bool { return v.CurrentPage < v.TotalPages }

// ProductList keeps the visible product table in sync with (search, page).
// Every fetch is numbered; a response that is not for the newest fetch is dropped.
type ProductList struct {
	api ProductAPI

	mu          sync.Mutex
	search      string
	currentPage int
	totalPages  int
	totalItems  int64
	rows        []Row
	state       State
	err         string
	seq         uint64
}

func NewProductList(api ProductAPI) *ProductList {
	return &ProductList{
		api:         api,
		currentPage: 1,
		state:       StateIdle,
	}
}

func (l *ProductList) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]Row, len(l.rows))
	copy(rows, l.rows)
	return View{
		Search:      l.search,
		CurrentPage: l.currentPage,
		TotalPages:  l.totalPages,
		TotalItems:  l.totalItems,
		Rows:        rows,
		State:       l.state,
		Err:         l.err,
	}
}

// Refresh refetches the current page for the current search.
func (l *ProductList) Refresh(ctx context.Context) error {
	return l.fetch(ctx, func() {})
}

// SetSearch changes the search term and returns to page 1.
func (l *ProductList) SetSearch(ctx context.Context, term string) error {
	return l.fetch(ctx, func() {
		l.search = term
		l.currentPage = 1
	})
}

func (l *ProductList) NextPage(ctx context.Context) error {
	l.mu.Lock()
	page := l.currentPage + 1
	blocked := l.currentPage >= l.totalPages
	l.mu.Unlock()
	if blocked {
		return ErrPageOutOfRange
	}
	return l.GoToPage(ctx, page)
}

func (l *ProductList) PrevPage(ctx context.Context) error {
	l.mu.Lock()
	page := l.currentPage - 1
	l.mu.Unlock()
	if page < 1 {
		return ErrPageOutOfRange
	}
	return l.GoToPage(ctx, page)
}

// GoToPage accepts pages 1 through max(totalPages, 1).
func (l *ProductList) GoToPage(ctx context.Context, page int) error {
	l.mu.Lock()
	maxPage := l.totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	l.mu.Unlock()
	if page < 1 || page > maxPage {
		return ErrPageOutOfRange
	}
	return l.fetch(ctx, func() {
		l.currentPage = page
	})
}

// fetch applies change under the lock, then loads the resulting page.
func (l *ProductList) fetch(ctx context.Context, change func()) error {
	l.mu.Lock()
	change()
	l.seq++
	seq := l.seq
	query := dto.ProductQuery{Search: l.search, Page: l.currentPage, Limit: PageSize}
	l.state = StateLoading
	l.err = ""
	l.mu.Unlock()

	res, err := l.api.ListProducts(ctx, query)
	var rows []Row
	if err == nil {
		rows, err = buildRows(res.Products, res.CurrentPage, PageSize)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq {
		// superseded by a newer fetch
		return nil
	}

	if err != nil {
		l.state = StateError
		l.err = errorMessage(err)
		return err
	}

	l.currentPage = res.CurrentPage
	l.totalPages = res.TotalPages
	l.totalItems = res.TotalItems
	l.rows = rows
	l.state = StateReady
	return nil
}

func buildRows(products []dto.ProductResponse, page, limit int) ([]Row, error) {
	rows := make([]Row, 0, len(products))
	for i, p := range products {
		count, err := converter.ResponseCount(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Index:         (page-1)*limit + i + 1,
			ProductName:   p.Name,
			ProductCount:  count.String(),
			Count:         count,
			EditProduct:   EditToken(p.Name, count),
			DeleteProduct: p.Name,
		})
	}
	return rows, nil
}

// EditToken joins a product name and count as "name-count".
func EditToken(name string, count decimal.Decimal) string {
	return name + "-" + count.String()
}
