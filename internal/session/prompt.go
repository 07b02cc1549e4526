package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// prompter reads answers line by line. Hidden input goes through readSecret
// when one is set.
type prompter struct {
	in         *bufio.Scanner
	out        io.Writer
	readSecret func() (string, error)
}

func (p *prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}

// text asks for a trimmed line of input.
func (p *prompter) text(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password asks for input without echo when the terminal supports it.
func (p *prompter) password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.readSecret == nil {
		return p.readLine()
	}
	pw, err := p.readSecret()
	fmt.Fprintln(p.out)
	return pw, err
}

// yes asks a y/n question; anything starting with y counts as yes.
func (p *prompter) yes(label string) (bool, error) {
	answer, err := p.text(label + " (y/n)")
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// decimal asks until the answer parses and is at least minimum. An empty
// answer takes def when def is non-nil.
func (p *prompter) decimal(label string, minimum decimal.Decimal, def *decimal.Decimal) (decimal.Decimal, error) {
	if def != nil {
		label = fmt.Sprintf("%s [%s]", label, def.String())
	}
	for {
		answer, err := p.text(label)
		if err != nil {
			return decimal.Zero, err
		}
		if answer == "" && def != nil {
			return *def, nil
		}
		value, err := decimal.NewFromString(answer)
		if err != nil {
			fmt.Fprintln(p.out, "⚠ Enter a numeric value.")
			continue
		}
		if value.LessThan(minimum) {
			fmt.Fprintf(p.out, "⚠ Enter a value >= %s.\n", minimum.String())
			continue
		}
		return value, nil
	}
}
