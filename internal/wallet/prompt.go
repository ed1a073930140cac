package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Soar-Robotics/SoarchainPresale/internal/blockchain"
)

// PromptProvider is the fallback when no wallet app is available: the user
// types an address. It never emits events.
type PromptProvider struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Out != nil {
		fmt.Fprint(p.Out, "Enter your XRP wallet address: ")
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, fmt.Errorf("read address: %w", err)
	}
	address := strings.TrimSpace(line)
	if address == "" {
		return nil, fmt.Errorf("no address entered")
	}
	if !blockchain.HasAddressPrefix(address) {
		return nil, fmt.Errorf("invalid XRP address %q: must start with %q", address, blockchain.AddressPrefix)
	}
	return []string{address}, nil
}

func (p *PromptProvider) Events() <-chan Event { return nil }
