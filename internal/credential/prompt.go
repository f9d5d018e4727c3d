package credential

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// PromptProvider asks for the token on the controlling terminal without echo.
type PromptProvider struct {
	out io.Writer
	fd  int
}

func NewPromptProvider(out io.Writer) *PromptProvider {
	return &PromptProvider{out: out, fd: int(os.Stdin.Fd())}
}

func (p *PromptProvider) Token(_ context.Context) (Token, error) {
	if _, err := fmt.Fprint(p.out, "Enter OAuth token for the remote disk (input hidden): "); err != nil {
		return Token{}, err
	}
	raw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return Token{}, fmt.Errorf("read token: %w", err)
	}
	defer clear(raw)

	tok := NewToken(string(raw))
	if tok.Empty() {
		return Token{}, ErrEmpty
	}
	return tok, nil
}
