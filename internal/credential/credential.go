// Package credential acquires the remote service token at process start.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when a provider yields no token.
var ErrEmpty = errors.New("credential is empty")

const redacted = "[redacted]"

// Token is the authorization credential for the remote service. It formats
// as a placeholder so it never leaks through logs or error messages.
type Token struct {
	value string
}

func NewToken(value string) Token {
	return Token{value: strings.TrimSpace(value)}
}

// Value returns the raw token for building request headers.
func (t Token) Value() string {
	return t.value
}

func (t Token) Empty() bool {
	return t.value == ""
}

func (t Token) String() string {
	if t.value == "" {
		return ""
	}
	return redacted
}

func (t Token) GoString() string {
	return "credential.Token{" + t.String() + "}"
}

// Provider yields the token once during start-up.
type Provider interface {
	Token(ctx context.Context) (Token, error)
}

// EnvProvider reads the token from an environment variable.
type EnvProvider struct {
	Var string
}

func (p EnvProvider) Token(_ context.Context) (Token, error) {
	if p.Var == "" {
		return Token{}, fmt.Errorf("credential env variable name is required")
	}
	tok := NewToken(os.Getenv(p.Var))
	if tok.Empty() {
		return Token{}, fmt.Errorf("%s: %w", p.Var, ErrEmpty)
	}
	return tok, nil
}

// NewProvider picks a provider by source name ("env" or "prompt").
func NewProvider(source, envVar string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "env":
		return EnvProvider{Var: envVar}, nil
	case "prompt":
		return NewPromptProvider(os.Stderr), nil
	default:
		return nil, fmt.Errorf("unknown credential source %q", source)
	}
}
