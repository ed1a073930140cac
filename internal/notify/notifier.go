package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Soar-Robotics/SoarchainPresale/internal/models"
)

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	From    Address
	ReplyTo *Address
	To      []Address
	Subject string
	Text    string
}

// Mailer is the mail transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type ContactRequest struct {
	Name    string
	Email   string
	Message string
}

type Subscription struct {
	Email         string
	WalletAddress string
	XRPAmount     float64
}

// Notifier turns presale events into one email each, addressed to the team inbox.
type Notifier struct {
	mailer Mailer
	from   Address
	to     Address
}

func NewNotifier(mailer Mailer, from Address, to string) *Notifier {
	return &Notifier{mailer: mailer, from: from, to: Address{Email: to}}
}

func (n *Notifier) ContributionRecorded(ctx context.Context, c models.Contribution) error {
	var b strings.Builder
	fmt.Fprintf(&b, "A new presale contribution was recorded.\n\n")
	fmt.Fprintf(&b, "Wallet: %s\n", c.WalletAddress)
	fmt.Fprintf(&b, "Amount: %s XRP\n", formatXRP(c.XRPAmount))
	if c.TransactionID != "" {
		fmt.Fprintf(&b, "Transaction: %s\n", c.TransactionID)
	}
	if c.Email != "" {
		fmt.Fprintf(&b, "Contact: %s\n", c.Email)
	}
	fmt.Fprintf(&b, "Recorded at: %s\n", c.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))

	msg := n.message(fmt.Sprintf("New contribution: %s XRP", formatXRP(c.XRPAmount)), b.String())
	if c.Email != "" {
		msg.ReplyTo = &Address{Email: c.Email}
	}
	return n.send(ctx, "contribution", msg)
}

func (n *Notifier) ContactReceived(ctx context.Context, req ContactRequest) error {
	text := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", req.Name, req.Email, req.Message)
	msg := n.message("New contact message from "+req.Name, text)
	msg.ReplyTo = &Address{Email: req.Email, Name: req.Name}
	return n.send(ctx, "contact", msg)
}

func (n *Notifier) SubscriptionReceived(ctx context.Context, sub Subscription) error {
	text := fmt.Sprintf("Email: %s\nWallet: %s\nIntended amount: %s XRP\n",
		sub.Email, sub.WalletAddress, formatXRP(sub.XRPAmount))
	msg := n.message("New presale subscription", text)
	msg.ReplyTo = &Address{Email: sub.Email}
	return n.send(ctx, "subscribe", msg)
}

func (n *Notifier) message(subject, text string) Message {
	return Message{From: n.from, To: []Address{n.to}, Subject: subject, Text: text}
}

func (n *Notifier) send(ctx context.Context, kind string, msg Message) error {
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}

func formatXRP(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
