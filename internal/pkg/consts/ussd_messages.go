package consts

// USSD replies shown on the handset. Kept short: most gateways cut at 182 characters.
const (
	UssdGenericError     = "Servico temporariamente indisponivel. Tente novamente mais tarde."
	UssdGoodbye          = "Obrigado por usar o PayJA."
	UssdInvalidOption    = "Opcao invalida."
	UssdWelcome          = "Bem-vindo ao PayJA, credito rapido e-Mola.\n1. Registar\n0. Sair"
	UssdAskNUIT          = "Introduza o seu NUIT (9 digitos):"
	UssdInvalidNUIT      = "NUIT invalido."
	UssdAskBI            = "Introduza o numero do seu BI:"
	UssdInvalidBI        = "Numero de BI invalido."
	UssdAskInstitution   = "Introduza o nome da instituicao onde trabalha:"
	UssdInvalidInst      = "Nome da instituicao muito curto."
	UssdNotFoundAtBank   = "Nao encontramos os seus dados no banco. Contacte o seu banco."
	UssdIdentityMismatch = "Nao foi possivel confirmar a sua identidade. Contacte o seu banco."
	UssdAskOTP           = "Enviamos um codigo por SMS. Introduza o codigo:"
	UssdWrongOTP         = "Codigo incorreto. Tentativas restantes: %d\nIntroduza o codigo:"
	UssdOTPLocked        = "Numero maximo de tentativas atingido. Marque novamente para recomecar."
	UssdOTPExpired       = "O codigo expirou. Marque novamente para recomecar."
	UssdRegistered       = "Registo concluido! O seu limite e %.2f MZN. Marque novamente para pedir credito."

	UssdMainMenu       = "PayJA\n1. Pedir emprestimo\n2. Ver limite\n3. Meus emprestimos\n0. Sair"
	UssdOpenLoanExists = "Ja tem um emprestimo em curso. Liquide-o antes de pedir outro."
	UssdNoLimit        = "De momento nao tem limite disponivel."
	UssdYourLimit      = "O seu limite de credito e %.2f MZN."
	UssdNoLoans        = "Ainda nao tem emprestimos."
	UssdLoanStatus     = "Emprestimo %s\nValor: %.2f MZN\nTotal: %.2f MZN\nEstado: %s"
	UssdAskAmount      = "Introduza o valor (%.2f - %.2f MZN):"
	UssdInvalidAmount  = "Valor invalido."
	UssdAskTerm        = "Escolha o prazo:"
	UssdAskPurpose     = "Finalidade do emprestimo:"
	UssdAskBank        = "Escolha o banco:"
	UssdNoBanks        = "Nenhum banco disponivel de momento. Tente mais tarde."
	UssdTermsSummary   = "Valor: %.2f MZN\nJuros: %.2f MZN\nTotal: %.2f MZN\n%d prestacao(oes) de %.2f MZN\n1. Aceito os termos\n2. Nao aceito"
	UssdAskConfirm     = "Confirma o pedido de %.2f MZN via %s?\n1. Confirmar\n2. Cancelar"
	UssdCancelled      = "Pedido cancelado."
	UssdLoanApproved   = "Pedido %s aprovado! O valor sera creditado na sua conta e-Mola."
	UssdLoanDisbursed  = "Pedido %s aprovado! %.2f MZN creditados na sua conta e-Mola."
	UssdLoanRejected   = "Pedido %s nao aprovado. Recebera um SMS com mais informacao."
	UssdLoanPending    = "Pedido %s em analise. Recebera um SMS com a decisao."
)
