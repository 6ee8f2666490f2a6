package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"cadastro/internal/listing"
)

func (a *App) listScreen(ctx context.Context) error {
	if err := a.list.Refresh(ctx); errors.Is(err, context.Canceled) {
		return err
	}

	a.println(title("Usuários cadastrados", ""))
	items := a.list.Items()
	if len(items) == 0 {
		a.println(subtitleStyle.Render("Nenhum usuário cadastrado"))
	}
	for _, it := range items {
		a.println(itemCard(it))
	}
	a.banners(a.list.Error(), "")

	actions := lo.Map(items, func(it listing.Item, _ int) action {
		return action{
			label: fmt.Sprintf("%s (%s)", it.Nome, it.Cargo),
			run:   func(ctx context.Context) error { return a.itemMenu(ctx, it) },
		}
	})
	actions = append(actions,
		action{"Novo cadastro", func(context.Context) error { a.nav.ToForm(); return nil }},
		action{"Voltar", func(context.Context) error { a.nav.Back(); return nil }},
		action{"Sair", quit},
	)
	return a.choose(ctx, "Selecione um usuário", actions)
}

func (a *App) itemMenu(ctx context.Context, it listing.Item) error {
	a.println(itemCard(it))
	return a.choose(ctx, it.Nome, []action{
		{"Editar usuario", func(context.Context) error { return ignoreUnknown(a.list.Edit(it.ID)) }},
		{"Deletar usuario", func(ctx context.Context) error {
			_, err := a.list.Delete(ctx, it.ID)
			if errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}},
		{"Voltar", func(context.Context) error { return nil }},
	})
}

func itemCard(it listing.Item) string {
	return card([]cardRow{
		{"Nome:", it.Nome},
		{"Idade:", it.Idade},
		{"Cargo:", it.Cargo},
		{"Telefone:", it.Telefone},
	})
}

// ignoreUnknown drops ErrUnknownItem, which only means the list changed
// under the menu.
func ignoreUnknown(err error) error {
	if errors.Is(err, listing.ErrUnknownItem) {
		return nil
	}
	return err
}
