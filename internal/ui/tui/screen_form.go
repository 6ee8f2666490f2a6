package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	"cadastro/internal/form"
)

var fieldLabels = map[form.Field]string{
	form.FieldNome:        "Nome",
	form.FieldIdade:       "Idade",
	form.FieldCargo:       "Cargo",
	form.FieldTelefone:    "Telefone",
	form.FieldEmail:       "Email",
	form.FieldCEP:         "CEP",
	form.FieldRua:         "Rua",
	form.FieldNumero:      "Número",
	form.FieldComplemento: "Complemento",
	form.FieldBairro:      "Bairro",
	form.FieldCidade:      "Cidade",
	form.FieldEstado:      "Estado",
}

// displayOrder is the order fields are rendered in.
var displayOrder = []form.Field{
	form.FieldNome, form.FieldIdade, form.FieldCargo, form.FieldTelefone, form.FieldEmail,
	form.FieldCEP, form.FieldRua, form.FieldNumero, form.FieldComplemento,
	form.FieldBairro, form.FieldCidade, form.FieldEstado,
}

// editableFields excludes the ones only a lookup fills.
var editableFields = lo.Without(displayOrder, form.FieldRua, form.FieldBairro)

func (a *App) formScreen(ctx context.Context) error {
	a.renderForm()

	st := a.form.State()
	submitLabel := "Cadastrar"
	if st.EditingID != "" {
		submitLabel = "Salvar alterações"
	}
	return a.choose(ctx, "O que deseja fazer?", []action{
		{"Preencher formulário", a.fillForm},
		{"Editar campo", a.editField},
		{"Buscar CEP", a.lookup},
		{submitLabel, a.submit},
		{"Ver usuários cadastrados", func(context.Context) error { a.nav.ToList(); return nil }},
		{"Limpar formulário", func(ctx context.Context) error { a.form.ClearForm(ctx); return nil }},
		{"Cancelar", func(ctx context.Context) error { a.form.Cancel(ctx); return nil }},
		{"Logout", func(ctx context.Context) error { a.form.Logout(ctx); return nil }},
		{"Sair", quit},
	})
}

func (a *App) renderForm() {
	if user := a.session.Current(); user != nil {
		a.println(subtitleStyle.Render("Bem-vindo, " + user.Email))
	}
	st := a.form.State()
	if st.EditingID != "" {
		a.println(title("Editar Usuário", ""))
	} else {
		a.println(title("Cadastro de Usuário", ""))
	}

	for _, f := range displayOrder {
		a.println(a.fieldLine(st, f))
	}
	if st.LookingUp {
		a.println(subtitleStyle.Render("Buscando CEP..."))
	}
	a.banners(st.GeneralError, st.SuccessMessage)
}

func (a *App) fieldLine(st form.State, f form.Field) string {
	value := st.Record.Get(f)
	if f == form.FieldTelefone {
		value = form.FormatPhone(value)
	}
	label := fieldLabels[f]
	if a.form.RequiredHint(f) {
		label += " *"
	}
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	if msg := st.Errors[f]; msg != "" {
		b.WriteString("  ")
		b.WriteString(fieldErrorStyle.Render(msg))
	}
	return b.String()
}

// fillForm walks the fields in order and runs the lookup as soon as the
// CEP is usable.
func (a *App) fillForm(ctx context.Context) error {
	personal := []form.Field{form.FieldNome, form.FieldIdade, form.FieldCargo, form.FieldTelefone, form.FieldEmail, form.FieldCEP}
	for _, f := range personal {
		if err := a.askField(ctx, f); err != nil {
			return err
		}
	}
	if a.form.CanLookup() {
		if err := a.lookup(ctx); err != nil {
			return err
		}
	}
	rest := []form.Field{form.FieldNumero, form.FieldComplemento}
	st := a.form.State()
	if st.Record.Cidade == "" {
		rest = append(rest, form.FieldCidade)
	}
	if st.Record.Estado == "" {
		rest = append(rest, form.FieldEstado)
	}
	for _, f := range rest {
		if err := a.askField(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) editField(ctx context.Context) error {
	idx, err := a.driver.Select(ctx, SelectConfig{
		Message:  "Qual campo?",
		Options:  lo.Map(editableFields, func(f form.Field, _ int) string { return fieldLabels[f] }),
		PageSize: len(editableFields),
	})
	if err != nil || idx < 0 || idx >= len(editableFields) {
		return err
	}
	return a.askField(ctx, editableFields[idx])
}

func (a *App) askField(ctx context.Context, f form.Field) error {
	current := a.form.State().Record.Get(f)
	value, err := a.driver.Input(ctx, InputConfig{Message: fieldLabels[f], Default: current})
	if err != nil {
		return err
	}
	a.form.UpdateField(f, value)
	if msg := a.form.State().Errors[f]; msg != "" {
		a.println(fieldErrorStyle.Render(msg))
	}
	return nil
}

func (a *App) lookup(ctx context.Context) error {
	if err := a.form.LookupPostalCode(ctx); errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) submit(ctx context.Context) error {
	dispose, err := a.form.Submit(ctx)
	if errors.Is(err, context.Canceled) {
		return err
	}
	if dispose != nil {
		if a.dispose != nil {
			a.dispose()
		}
		a.dispose = dispose
	}
	return nil
}
