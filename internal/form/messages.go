package form

import (
	"errors"

	"cadastro/internal/records/models"
)

const (
	msgFixErrors          = "Corrija os erros no formulário antes de continuar"
	msgAddressIncomplete  = "Todos os campos obrigatórios do endereço devem ser preenchidos"
	msgCreated            = "Usuário cadastrado com sucesso!"
	msgUpdated            = "Usuário atualizado com sucesso!"
	msgPermissionDenied   = "Permissão negada. Verifique se sua sessão ainda é válida."
	msgUnavailable        = "Serviço de cadastro indisponível. Verifique sua conexão."
	msgSubmitFailedPrefix = "Erro ao cadastrar: "
	msgUnknownError       = "Erro desconhecido"

	msgCEPNotFound       = "CEP não encontrado ou inválido"
	msgCEPNotFoundField  = "CEP não encontrado"
	msgCEPFailedPrefix   = "Erro ao buscar CEP: "
	msgCEPFailedField    = "Erro ao buscar CEP"
	msgConnectionFailure = "Falha na conexão"

	msgLogoutFailedTitle = "Erro"
	msgLogoutFailed      = "Não foi possível fazer logout."
)

var (
	confirmLogout = Confirmation{
		Title:   "Logout",
		Message: "Tem certeza que deseja sair?",
		Cancel:  "Cancelar",
		Proceed: "Sair",
	}
	confirmClear = Confirmation{
		Title:   "Limpar formulário",
		Message: "Deseja limpar todos os campos do formulário?",
		Cancel:  "Cancelar",
		Proceed: "Limpar",
	}
	confirmCancel = Confirmation{
		Title:   "Cancelar cadastro",
		Message: "Deseja cancelar o cadastro e perder os dados preenchidos?",
		Cancel:  "Não",
		Proceed: "Sim, cancelar",
	}
)

// submitFailureMessage maps a store failure to the banner text.
func submitFailureMessage(err error) string {
	kind := models.KindOf(err)
	switch kind {
	case models.KindPermissionDenied:
		return msgPermissionDenied
	case models.KindUnavailable:
		return msgUnavailable
	case models.KindUnknown:
		msg := rawMessage(err)
		if msg == "" {
			msg = msgUnknownError
		}
		return msgSubmitFailedPrefix + msg
	}
	return msgSubmitFailedPrefix + msgUnknownError
}

func rawMessage(err error) string {
	var me *models.Error
	if errors.As(err, &me) {
		return me.Message
	}
	return err.Error()
}
