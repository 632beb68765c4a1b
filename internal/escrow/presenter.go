package escrow

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// Badge is the fixed label and style rendered for one escrow status.
// The mapping is deterministic from the status alone.
type Badge struct {
	Label       string
	Description string
	Style       lipgloss.Style
}

var (
	holdingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	releasedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	refundedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	unknownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StatusBadge maps an escrow status to its badge. Unknown statuses get a
// muted fallback instead of a panic; the server may grow new states.
func StatusBadge(status domain.EscrowStatus) Badge {
	switch status {
	case domain.EscrowHolding:
		return Badge{
			Label:       "Fonds bloqués",
			Description: "Le paiement est conservé en séquestre jusqu'à la libération ou le remboursement.",
			Style:       holdingStyle,
		}
	case domain.EscrowReleased:
		return Badge{
			Label:       "Fonds libérés",
			Description: "Le paiement a été versé au propriétaire.",
			Style:       releasedStyle,
		}
	case domain.EscrowRefunded:
		return Badge{
			Label:       "Remboursé",
			Description: "Le paiement a été remboursé au locataire.",
			Style:       refundedStyle,
		}
	}
	return Badge{Label: string(status), Style: unknownStyle}
}

// Render returns the styled one-line representation of an escrow.
func Render(e *domain.Escrow) string {
	badge := StatusBadge(e.Status)
	return fmt.Sprintf("%s  %d GNF", badge.Style.Render(badge.Label), e.HeldAmount)
}

// CanRequestRefund reports whether the refund action is offered. Only funds
// still in HOLDING can be asked back.
func CanRequestRefund(status domain.EscrowStatus) bool {
	return status == domain.EscrowHolding
}
