package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/format"
)

// Campos del formulario de ingrediente.
const (
	fName = iota
	fPrice
	fCalories
	fInventory
	fKind
	fFlavor
	fVegetarian
	fHealthy
)

// ingredientsPage inventario de ingredientes con alta, edición y baja confirmada.
type ingredientsPage struct {
	ctx    context.Context
	ctl    *listing.IngredientController
	styles Styles
	table  table.Model
	items  []entity.Ingredient
	form   *form
	busy   bool
}

func newIngredientsPage(ctx context.Context, ctl *listing.IngredientController, s Styles) *ingredientsPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Nombre", Width: 18},
			{Title: "Precio", Width: 10},
			{Title: "Calorías", Width: 9},
			{Title: "Inventario", Width: 10},
			{Title: "Tipo", Width: 12},
			{Title: "Sabor", Width: 12},
			{Title: "Veg.", Width: 5},
			{Title: "Sano", Width: 5},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithStyles(s.Table),
	)
	f := newForm("Nombre", "Precio", "Calorías", "Inventario", "Tipo", "Sabor", "Vegetariano", "Sano").
		placeholder(fKind, "base | complemento").
		placeholder(fFlavor, "solo para base").
		placeholder(fVegetarian, "s/n").
		placeholder(fHealthy, "s/n")
	ctl.CloseForm()
	ctl.CancelDelete()
	return &ingredientsPage{ctx: ctx, ctl: ctl, styles: s, table: t, form: f}
}

func (p *ingredientsPage) Init() tea.Cmd { return p.load() }

func (p *ingredientsPage) load() tea.Cmd {
	ctx, ctl := p.ctx, p.ctl
	return func() tea.Msg {
		return loadedMsg{screen: views.ScreenIngredients, err: ctl.Load(ctx)}
	}
}

func (p *ingredientsPage) Capturing() bool {
	_, pending := p.ctl.PendingDelete()
	return p.form.focused || pending
}

func (p *ingredientsPage) refresh() {
	p.items = p.ctl.Items()
	rows := make([]table.Row, 0, len(p.items))
	for _, i := range p.items {
		flavor := "-"
		if i.Flavor != nil {
			flavor = *i.Flavor
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(i.ID, 10), i.Name, format.Price(i.Price),
			format.Int(i.Calories), format.Int(i.Inventory), string(i.Kind), flavor,
			yesNo(i.IsVegetarian), yesNo(i.IsHealthy),
		})
	}
	p.table.SetRows(rows)
}

func (p *ingredientsPage) selected() (entity.Ingredient, bool) {
	c := p.table.Cursor()
	if c < 0 || c >= len(p.items) {
		return entity.Ingredient{}, false
	}
	return p.items[c], true
}

func (p *ingredientsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		p.refresh()
		return nil
	case doneMsg:
		p.busy = false
		p.refresh()
		if msg.err == nil && msg.op != "delete" {
			p.form.Blur()
		}
		return nil
	case tea.KeyMsg:
		if p.form.focused {
			return p.formKey(msg)
		}
		if _, pending := p.ctl.PendingDelete(); pending {
			switch msg.String() {
			case "y", "s":
				return p.confirmDelete()
			case "n", "esc":
				p.ctl.CancelDelete()
			}
			return nil
		}
		switch msg.String() {
		case "a":
			return p.openAdd()
		case "e", "enter":
			return p.openEdit()
		case "d", "delete":
			if ing, ok := p.selected(); ok {
				p.ctl.RequestDelete(ing.ID)
			}
			return nil
		case "r":
			return p.load()
		}
	}
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *ingredientsPage) formKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.ctl.CloseForm()
		p.form.Blur()
		return nil
	case "up", "shift+tab":
		return p.form.Prev()
	case "down", "tab":
		return p.form.Next()
	case "enter":
		if !p.form.Last() {
			return p.form.Next()
		}
		return p.submit()
	}
	return p.form.Update(msg)
}

func (p *ingredientsPage) openAdd() tea.Cmd {
	p.ctl.OpenAdd()
	p.fill(entity.NewIngredientInput())
	return p.form.Focus()
}

func (p *ingredientsPage) openEdit() tea.Cmd {
	sel, ok := p.selected()
	if !ok {
		return nil
	}
	ing, err := p.ctl.OpenEdit(sel.ID)
	if err != nil {
		return nil
	}
	p.fill(ing.Input())
	return p.form.Focus()
}

func (p *ingredientsPage) fill(in entity.IngredientInput) {
	p.form.Reset()
	p.form.Set(fName, in.Name)
	p.form.Set(fPrice, in.Price)
	p.form.Set(fCalories, in.Calories)
	p.form.Set(fInventory, in.Inventory)
	p.form.Set(fKind, string(in.Kind))
	p.form.Set(fFlavor, in.Flavor)
	p.form.Set(fVegetarian, yesNo(in.IsVegetarian))
	p.form.Set(fHealthy, yesNo(in.IsHealthy))
}

// draft lee el formulario. El sabor se descarta si el tipo no es base.
func (p *ingredientsPage) draft() entity.IngredientInput {
	in := entity.IngredientInput{
		Name:         p.form.Value(fName),
		Price:        p.form.Value(fPrice),
		Calories:     p.form.Value(fCalories),
		Inventory:    p.form.Value(fInventory),
		Kind:         entity.IngredientKind(strings.ToLower(p.form.Value(fKind))),
		IsVegetarian: yes(p.form.Value(fVegetarian)),
		IsHealthy:    yes(p.form.Value(fHealthy)),
	}
	if in.Kind == entity.KindBase {
		in.Flavor = p.form.Value(fFlavor)
	}
	return in
}

func (p *ingredientsPage) submit() tea.Cmd {
	if p.busy {
		return nil
	}
	p.busy = true
	ctx, ctl, in := p.ctx, p.ctl, p.draft()
	fs := ctl.Form()
	if fs.Mode == listing.EditForm {
		in.ID = fs.ID
		return func() tea.Msg {
			_, err := ctl.Update(ctx, in)
			return doneMsg{screen: views.ScreenIngredients, op: "update", err: err}
		}
	}
	return func() tea.Msg {
		_, err := ctl.Create(ctx, in)
		return doneMsg{screen: views.ScreenIngredients, op: "create", err: err}
	}
}

func (p *ingredientsPage) confirmDelete() tea.Cmd {
	if p.busy {
		return nil
	}
	p.busy = true
	ctx, ctl := p.ctx, p.ctl
	return func() tea.Msg {
		return doneMsg{screen: views.ScreenIngredients, op: "delete", err: ctl.ConfirmDelete(ctx)}
	}
}

func (p *ingredientsPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Ingredientes"))
	b.WriteString("\n\n")

	switch p.ctl.State() {
	case listing.Loading:
		b.WriteString(p.styles.Muted.Render("Cargando ingredientes…"))
		return b.String()
	case listing.LoadError:
		b.WriteString(p.styles.Error.Render("Error: " + p.ctl.LoadMessage()))
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render("r: reintentar"))
		return b.String()
	}

	b.WriteString(p.table.View())
	b.WriteString("\n")

	if id, ok := p.ctl.PendingDelete(); ok {
		b.WriteString("\n")
		b.WriteString(p.styles.Error.Render("¿Eliminar el ingrediente " + strconv.FormatInt(id, 10) + "? (y/n)"))
	}
	if err := p.ctl.ActionErr(); err != nil {
		b.WriteString("\n")
		b.WriteString(p.styles.Error.Render("No se pudo eliminar: " + domain.UserMessage(err)))
	}

	if fs := p.ctl.Form(); fs.Mode != listing.NoForm {
		title := "Nuevo ingrediente"
		if fs.Mode == listing.EditForm {
			title = "Editar ingrediente " + strconv.FormatInt(fs.ID, 10)
		}
		body := p.styles.Title.Render(title) + "\n" + p.form.View(p.styles)
		if err := p.ctl.FormErr(); err != nil {
			body += "\n" + p.styles.Error.Render(domain.UserMessage(err))
		}
		if p.busy {
			body += "\n" + p.styles.Muted.Render("Guardando…")
		}
		b.WriteString("\n")
		b.WriteString(p.styles.Box.Render(body))
		b.WriteString(p.styles.Help.Render("↑/↓: campo · enter: siguiente/guardar · esc: cancelar"))
		return b.String()
	}
	b.WriteString(p.styles.Help.Render("a: agregar · e: editar · d: eliminar · r: recargar"))
	return b.String()
}
