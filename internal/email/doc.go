// Package email envía los correos transaccionales (activación de cuenta)
// por SMTP usando templates embebidos.
package email
