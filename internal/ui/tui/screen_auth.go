package tui

import "context"

func (a *App) authScreen(ctx context.Context) error {
	st := a.auth.State()
	if st.LoginMode {
		a.println(title("Acesso ao Sistema", "Faça login para continuar"))
	} else {
		a.println(title("Cadastro", "Preencha os dados para se cadastrar"))
	}
	a.banners(st.Error, st.Success)

	submitLabel, toggleLabel := "Entrar", "Não tem uma conta? Cadastre-se"
	if !st.LoginMode {
		submitLabel, toggleLabel = "Cadastrar", "Já tem uma conta? Faça login"
	}
	return a.choose(ctx, "O que deseja fazer?", []action{
		{submitLabel, a.authenticate},
		{toggleLabel, func(context.Context) error { a.auth.ToggleMode(); return nil }},
		{"Sair", quit},
	})
}

func (a *App) authenticate(ctx context.Context) error {
	st := a.auth.State()
	email, err := a.driver.Input(ctx, InputConfig{Message: "Email", Default: st.Email})
	if err != nil {
		return err
	}
	a.auth.SetEmail(email)

	password, err := a.driver.Password(ctx, InputConfig{Message: "Senha"})
	if err != nil {
		return err
	}
	a.auth.SetPassword(password)

	if !st.LoginMode {
		confirm, err := a.driver.Password(ctx, InputConfig{Message: "Confirmar Senha"})
		if err != nil {
			return err
		}
		a.auth.SetConfirm(confirm)
	}

	// Failures are shown from State on the next render.
	if err := a.auth.Submit(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

