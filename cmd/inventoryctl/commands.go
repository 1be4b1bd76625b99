package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-tracker/internal/client"
	"inventory-tracker/internal/converter"
	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/tui"
	"inventory-tracker/internal/viewmodel"
	"inventory-tracker/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// errReported marks a failure the notifier already printed.
var errReported = errors.New("reported")

type cli struct {
	api       *client.Client
	tokens    *tokenStore
	prompter  *tui.Prompter
	notifier  *tui.Notifier
	validator *validator.CustomValidator
	out       io.Writer
	log       *logrus.Logger
}

func newCLI(apiURL string, tokens *tokenStore, in io.Reader, out io.Writer, log *logrus.Logger) *cli {
	return &cli{
		api:       client.New(apiURL, nil),
		tokens:    tokens,
		prompter:  tui.NewPrompter(in, out),
		notifier:  tui.NewNotifier(out),
		validator: validator.NewValidator(),
		out:       out,
		log:       log,
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout(ctx)
	case "list", "add", "edit", "delete", "browse":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	ok, err := c.signedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		tui.RenderWelcome(c.out)
		return nil
	}

	switch cmd {
	case "list":
		return c.list(ctx, args)
	case "add":
		return c.add(ctx, args)
	case "edit":
		return c.edit(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	default:
		return c.browse(ctx)
	}
}

// signedIn loads the saved token and asks the server whether it is still valid.
func (c *cli) signedIn(ctx context.Context) (bool, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	c.api.SetToken(token)

	session, err := c.api.Session(ctx)
	if err != nil {
		return false, err
	}
	c.log.WithField("username", session.Username).Debug("Session checked")
	return session.Authenticated, nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	username := fs.StringP("username", "u", "", "user to sign in as")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = c.prompter.Ask("Username", "admin"); err != nil {
			return err
		}
	}
	password, err := c.prompter.Ask("Password", "")
	if err != nil {
		return err
	}

	token, err := c.api.Login(ctx, *username, password)
	if err != nil {
		c.notifier.Error(apiMessage(err))
		return errReported
	}
	if err := c.tokens.Save(token.AccessToken); err != nil {
		return err
	}

	c.notifier.Success("Signed in as " + *username)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}
	if token != "" {
		c.api.SetToken(token)
		if err := c.api.Logout(ctx); err != nil {
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				return err
			}
			// the server already forgot the session
			c.log.WithError(err).Debug("Logout rejected")
		}
	}
	if err := c.tokens.Clear(); err != nil {
		return err
	}

	c.notifier.Success("Signed out")
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	search := fs.StringP("search", "s", "", "case-insensitive name filter")
	page := fs.IntP("page", "p", 1, "page to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := viewmodel.NewProductList(c.api)
	err := list.SetSearch(ctx, *search)
	if err == nil && *page != 1 {
		err = list.GoToPage(ctx, *page)
		if errors.Is(err, viewmodel.ErrPageOutOfRange) {
			return fmt.Errorf("page %d is out of range", *page)
		}
	}

	if renderErr := tui.RenderProductTable(c.out, list.View()); renderErr != nil {
		return renderErr
	}
	if err != nil {
		return errReported
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: inventoryctl add NAME COUNT")
	}

	dialogs := viewmodel.NewDialogs(c.api, nil, c.notifier, c.prompter, c.validator)
	if err := dialogs.Add(ctx, viewmodel.AddForm{Name: args[0], Count: args[1]}); err != nil {
		return errReported
	}
	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	newName := fs.String("name", "", "rename the product")
	total := fs.String("total", "", "new total count (defaults to the current count)")
	add := fs.String("add", "", "amount to add to the total")
	reduce := fs.String("reduce", "", "amount to subtract from the total")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: inventoryctl edit NAME [--name NEW] [--total N] [--add N] [--reduce N]")
	}

	row, err := c.findRow(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	form := viewmodel.NewEditForm(*row)
	form.NewName = *newName
	if fs.Changed("total") {
		form.Total = *total
	}
	form.Add = *add
	form.Reduce = *reduce

	dialogs := viewmodel.NewDialogs(c.api, nil, c.notifier, c.prompter, c.validator)
	return c.submitEdit(ctx, dialogs, form)
}

func (c *cli) submitEdit(ctx context.Context, dialogs *viewmodel.Dialogs, form *viewmodel.EditForm) error {
	if !dialogs.CanSubmit(form) {
		invalid := dialogs.InvalidFields(form)
		for _, field := range []string{"newName", "total", "add", "reduce"} {
			if invalid[field] {
				c.notifier.Error("Invalid " + field + " value")
			}
		}
		return errReported
	}
	if err := dialogs.Edit(ctx, form); err != nil {
		return errReported
	}
	return nil
}

// findRow looks a product up by its exact name.
func (c *cli) findRow(ctx context.Context, name string) (*viewmodel.Row, error) {
	res, err := c.api.ListProducts(ctx, dto.ProductQuery{Name: name, Page: 1, Limit: 1})
	if err != nil {
		c.notifier.Error(apiMessage(err))
		return nil, errReported
	}
	if len(res.Products) == 0 {
		c.notifier.Error("Product not found")
		return nil, errReported
	}

	p := res.Products[0]
	count, err := converter.ResponseCount(p)
	if err != nil {
		return nil, err
	}
	return &viewmodel.Row{
		Index:         1,
		ProductName:   p.Name,
		ProductCount:  count.String(),
		Count:         count,
		EditProduct:   viewmodel.EditToken(p.Name, count),
		DeleteProduct: p.Name,
	}, nil
}

type autoConfirm struct{}

func (autoConfirm) Confirm(string) bool { return true }

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: inventoryctl delete NAME [--yes]")
	}

	var confirmer viewmodel.Confirmer = c.prompter
	if *yes {
		confirmer = autoConfirm{}
	}

	dialogs := viewmodel.NewDialogs(c.api, nil, c.notifier, confirmer, c.validator)
	row := viewmodel.Row{ProductName: fs.Arg(0), DeleteProduct: fs.Arg(0)}
	if err := dialogs.Delete(ctx, row); err != nil {
		return errReported
	}
	return nil
}

const browseHelp = "n next | p previous | g N go to page | s TERM search | a add | e IDX edit | d IDX delete | q quit"

// browse runs the interactive table until q or end of input.
func (c *cli) browse(ctx context.Context) error {
	list := viewmodel.NewProductList(c.api)
	dialogs := viewmodel.NewDialogs(c.api, list, c.notifier, c.prompter, c.validator)

	if err := list.Refresh(ctx); err != nil {
		c.log.WithError(err).Debug("Initial load failed")
	}

	for {
		if err := tui.RenderProductTable(c.out, list.View()); err != nil {
			return err
		}
		fmt.Fprintln(c.out, browseHelp)

		line, err := c.prompter.Ask(">", "")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "q":
			return nil
		case "n":
			err = list.NextPage(ctx)
		case "p":
			err = list.PrevPage(ctx)
		case "g":
			page, convErr := strconv.Atoi(arg)
			if convErr != nil {
				c.notifier.Error("Page must be a number")
				continue
			}
			err = list.GoToPage(ctx, page)
		case "s":
			err = list.SetSearch(ctx, arg)
		case "a":
			err = c.browseAdd(ctx, dialogs)
		case "e":
			err = c.browseEdit(ctx, dialogs, list.View(), arg)
		case "d":
			row, ok := c.rowAt(list.View(), arg)
			if !ok {
				continue
			}
			err = dialogs.Delete(ctx, row)
		case "":
			continue
		default:
			c.notifier.Error("Unknown command " + strconv.Quote(cmd))
			continue
		}

		if errors.Is(err, viewmodel.ErrPageOutOfRange) {
			c.notifier.Error("No such page")
		} else if err != nil {
			c.log.WithError(err).Debug("Browse command failed")
		}
	}
}

func (c *cli) browseAdd(ctx context.Context, dialogs *viewmodel.Dialogs) error {
	name, err := c.prompter.Ask("Product name", "")
	if err != nil {
		return err
	}
	count, err := c.prompter.Ask("Count", "")
	if err != nil {
		return err
	}
	return dialogs.Add(ctx, viewmodel.AddForm{Name: name, Count: count})
}

func (c *cli) browseEdit(ctx context.Context, dialogs *viewmodel.Dialogs, view viewmodel.View, arg string) error {
	row, ok := c.rowAt(view, arg)
	if !ok {
		return nil
	}

	form := viewmodel.NewEditForm(row)
	var err error
	if form.NewName, err = c.prompter.Ask("New name", ""); err != nil {
		return err
	}
	if form.Total, err = c.prompter.Ask("Total", form.Total); err != nil {
		return err
	}
	if form.Add, err = c.prompter.Ask("Add", ""); err != nil {
		return err
	}
	if form.Reduce, err = c.prompter.Ask("Reduce", ""); err != nil {
		return err
	}
	return c.submitEdit(ctx, dialogs, form)
}

// rowAt finds the visible row with the displayed index arg.
func (c *cli) rowAt(view viewmodel.View, arg string) (viewmodel.Row, bool) {
	idx, err := strconv.Atoi(arg)
	if err == nil {
		for _, r := range view.Rows {
			if r.Index == idx {
				return r, true
			}
		}
	}
	c.notifier.Error("No row " + strconv.Quote(arg) + " on this page")
	return viewmodel.Row{}, false
}

func apiMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.APIMessage()
	}
	return err.Error()
}
