package viewmodel

import (
	"context"
	"errors"
	"strings"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/pkg/validator"

	"github.com/shopspring/decimal"
)

var ErrInvalidForm = errors.New("form has invalid fields")

// Notifier shows the outcome of a mutation to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// AddForm is the input of the add dialog.
type AddForm struct {
	Name  string `json:"name" validate:"required,max=255"`
	Count string `json:"count" validate:"required,udecimal"`
}

// EditForm is the input of the edit dialog for one row. Total starts at the row's count;
// the submitted count is Total + Add - Reduce. The seeded Total is accepted as is,
// so a product holding a negative count can still be renamed.
type EditForm struct {
	ProductName string `json:"-"`
	NewName     string `json:"newName" validate:"omitempty,max=255"`
	Total       string `json:"total" validate:"required,udecimal"`
	Add         string `json:"add" validate:"omitempty,udecimal"`
	Reduce      string `json:"reduce" validate:"omitempty,udecimal"`

	seedTotal string
}

func NewEditForm(row Row) *EditForm {
	return &EditForm{
		ProductName: row.ProductName,
		Total:       row.ProductCount,
		seedTotal:   row.ProductCount,
	}
}

// Dialogs runs the add, edit and delete flows against the API and refreshes the list afterwards.
type Dialogs struct {
	api       ProductAPI
	list      *ProductList
	notifier  Notifier
	confirmer Confirmer
	validator *validator.CustomValidator
}

func NewDialogs(api ProductAPI, list *ProductList, notifier Notifier, confirmer Confirmer, v *validator.CustomValidator) *Dialogs {
	return &Dialogs{
		api:       api,
		list:      list,
		notifier:  notifier,
		confirmer: confirmer,
		validator: v,
	}
}

// InvalidFields returns the invalid flag of every edit field, keyed by json name.
func (d *Dialogs) InvalidFields(form *EditForm) map[string]bool {
	flags := map[string]bool{"newName": false, "total": false, "add": false, "reduce": false}
	for field := range d.fieldErrors(form) {
		flags[field] = true
	}
	return flags
}

// CanSubmit reports whether every edit field is valid.
func (d *Dialogs) CanSubmit(form *EditForm) bool {
	return len(d.fieldErrors(form)) == 0
}

func (d *Dialogs) fieldErrors(form *EditForm) map[string]string {
	err := d.validator.Validate(form)
	if err == nil {
		return nil
	}
	errs := d.validator.FormatValidationErrors(err)
	if form.seedTotal != "" && strings.TrimSpace(form.Total) == form.seedTotal {
		delete(errs, "total")
	}
	return errs
}

// ResultCount computes Total + Add - Reduce. Blank Add and Reduce count as zero.
func (form *EditForm) ResultCount() (decimal.Decimal, error) {
	total, err := decimal.NewFromString(strings.TrimSpace(form.Total))
	if err != nil {
		return decimal.Decimal{}, err
	}
	add, err := optionalDecimal(form.Add)
	if err != nil {
		return decimal.Decimal{}, err
	}
	reduce, err := optionalDecimal(form.Reduce)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return total.Add(add).Sub(reduce), nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (d *Dialogs) Add(ctx context.Context, form AddForm) error {
	form.Count = strings.TrimSpace(form.Count)
	if err := d.validator.Validate(&form); err != nil {
		d.notifier.Error("Please provide valid name and count")
		return ErrInvalidForm
	}

	count, err := decimal.NewFromString(form.Count)
	if err != nil {
		d.notifier.Error("Please provide valid name and count")
		return ErrInvalidForm
	}

	if _, _, err := d.api.CreateProduct(ctx, form.Name, count); err != nil {
		d.notifier.Error(errorMessage(err))
		return err
	}

	d.notifier.Success("Product added successfully")
	return d.refresh(ctx)
}

func (d *Dialogs) Edit(ctx context.Context, form *EditForm) error {
	if !d.CanSubmit(form) {
		return ErrInvalidForm
	}

	count, err := form.ResultCount()
	if err != nil {
		return ErrInvalidForm
	}

	req := dto.UpdateProductRequest{
		Name:    form.ProductName,
		NewName: strings.TrimSpace(form.NewName),
		Count:   &count,
	}
	if _, err := d.api.UpdateProduct(ctx, req); err != nil {
		d.notifier.Error(errorMessage(err))
		return err
	}

	d.notifier.Success("Product updated successfully")
	return d.refresh(ctx)
}

// Delete asks for confirmation first. A declined confirmation is not an error.
func (d *Dialogs) Delete(ctx context.Context, row Row) error {
	if !d.confirmer.Confirm("Are you sure you want to delete " + row.DeleteProduct + "?") {
		return nil
	}

	message, err := d.api.DeleteProduct(ctx, row.DeleteProduct)
	if err != nil {
		d.notifier.Error(errorMessage(err))
		return err
	}

	d.notifier.Success(message)
	return d.refresh(ctx)
}

func (d *Dialogs) refresh(ctx context.Context) error {
	if d.list == nil {
		return nil
	}
	return d.list.Refresh(ctx)
}

// errorMessage prefers the server's message over the transport error text.
func errorMessage(err error) string {
	var msg interface{ APIMessage() string }
	if errors.As(err, &msg) {
		return msg.APIMessage()
	}
	return err.Error()
}
