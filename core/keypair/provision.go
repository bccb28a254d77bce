package keypair

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Provisioner makes sure a certificate and key exist before the server
// loads them.
type Provisioner interface {
	Ensure(ctx context.Context, certFile, keyFile string) error
}

// ProvisionerFunc adapts a function to Provisioner.
type ProvisionerFunc func(ctx context.Context, certFile, keyFile string) error

func (f ProvisionerFunc) Ensure(ctx context.Context, certFile, keyFile string) error {
	return f(ctx, certFile, keyFile)
}

// State reports which halves of a keypair exist on disk.
type State int

const (
	Missing State = iota
	Incomplete
	Present
)

// Check inspects certFile and keyFile.
func Check(certFile, keyFile string) State {
	certOK, keyOK := exists(certFile), exists(keyFile)
	switch {
	case certOK && keyOK:
		return Present
	case certOK || keyOK:
		return Incomplete
	default:
		return Missing
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Existing is a Provisioner that never creates anything. It succeeds when
// both files exist so the TLS loader can report parse errors itself.
var Existing Provisioner = ProvisionerFunc(func(_ context.Context, certFile, keyFile string) error {
	switch Check(certFile, keyFile) {
	case Present:
		return nil
	case Incomplete:
		return fmt.Errorf("%w: %s, %s", ErrIncompleteKeypair, certFile, keyFile)
	default:
		return fmt.Errorf("%w: %s and %s do not exist", ErrLoad, certFile, keyFile)
	}
})

// Prompt asks an operator whether to generate a self-signed keypair when
// neither file exists.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// Interactive returns a Prompt bound to the process terminal.
func Interactive() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stdout}
}

// Ensure implements Provisioner.
func (p *Prompt) Ensure(ctx context.Context, certFile, keyFile string) error {
	switch Check(certFile, keyFile) {
	case Present:
		return nil
	case Incomplete:
		return fmt.Errorf("%w: %s, %s", ErrIncompleteKeypair, certFile, keyFile)
	}

	in := bufio.NewReader(p.In)

	fmt.Fprintf(p.Out, "\n[fluffer] Missing certificate files!\nExpected two files: %s and %s\n\n", certFile, keyFile)
	fmt.Fprint(p.Out, "Do you want to generate a new certificate now? [y/n]\n→ ")

	answer, err := readLine(ctx, in)
	if err != nil {
		return errors.Join(ErrGenerationStopped, err)
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		return ErrGenerationStopped
	}

	fmt.Fprint(p.Out, "\n[fluffer] Enter the domain name(s) you will be using.\ne.g. localhost,domain.tld,domain2.tld\n→ ")

	list, err := readLine(ctx, in)
	if err != nil {
		return errors.Join(ErrGenerationStopped, err)
	}

	domains := ParseDomains(list)
	if err := Generate(certFile, keyFile, domains); err != nil {
		return err
	}

	fmt.Fprintf(p.Out, "[fluffer] Wrote %s and %s for %s\n", certFile, keyFile, strings.Join(domains, ", "))
	return nil
}

func readLine(ctx context.Context, r *bufio.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
