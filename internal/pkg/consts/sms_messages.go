package consts

// SMS texts. Amounts are formatted with %.2f and suffixed MZN.
const (
	SmsOTP                = "PayJA: o seu codigo de verificacao e %s. Valido por %d minutos. Nao partilhe."
	SmsRegistered         = "PayJA: registo concluido. O seu limite de credito e %.2f MZN. Marque *898# para pedir."
	SmsLoanReceived       = "PayJA: pedido %s de %.2f MZN recebido e em analise."
	SmsLoanApproved       = "PayJA: pedido %s aprovado. Total a pagar %.2f MZN."
	SmsLoanRejected       = "PayJA: pedido %s nao aprovado. Contacte o seu banco para mais informacao."
	SmsLoanDisbursed      = "PayJA: %.2f MZN creditados na sua conta e-Mola. Ref %s."
	SmsCreditPending      = "PayJA: o credito do emprestimo %s esta pendente. Sera creditado em breve."
	SmsPaymentReceived    = "PayJA: recebemos %.2f MZN da prestacao %d do emprestimo %s."
	SmsLoanCompleted      = "PayJA: emprestimo %s liquidado. Obrigado!"
	SmsInstallmentOverdue = "PayJA: a prestacao %d do emprestimo %s (%.2f MZN) esta em atraso."
)
