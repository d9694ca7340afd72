package ports

// Tokenizer issues service tokens for outbound calls
type Tokenizer interface {
	ServiceToken(subject string) (string, error)
}
