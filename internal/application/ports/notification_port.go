package ports

import "context"

// EmailSender puerto de salida para correo. Un error significa que el mensaje no se entregó al servidor.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
