package provision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shohag/hookbridge/internal/hookdeck"
)

// Cleanup deletes the gateway resources owned by the naming table:
// connections first, then sources, then destinations. Only resources whose
// names appear in the table are touched; everything else on the account is
// left alone. Each category is confirmed on in before any deletion unless
// assumeYes is set.
func (r *Reconciler) Cleanup(ctx context.Context, in io.Reader, out io.Writer, assumeYes bool) error {
	reader := bufio.NewReader(in)

	ownedConnections := map[string]bool{}
	ownedDestinations := map[string]bool{}
	for _, route := range Routes() {
		ownedConnections[route.ConnectionName] = true
		ownedDestinations[route.DestinationName] = true
	}

	connections, err := r.gateway.ListConnections(ctx)
	if err != nil {
		return fmt.Errorf("list connections: %w", err)
	}
	var conns []hookdeck.Connection
	for _, c := range connections {
		if ownedConnections[c.Name] {
			conns = append(conns, c)
		}
	}
	if len(conns) > 0 {
		fmt.Fprintf(out, "Connections to delete:\n")
		for _, c := range conns {
			fmt.Fprintf(out, "  %s  %s\n", c.ID, c.Name)
		}
		if assumeYes || confirm(reader, out, fmt.Sprintf("Delete %d connection(s)?", len(conns))) {
			for _, c := range conns {
				if err := r.gateway.DeleteConnection(ctx, c.ID); err != nil {
					return fmt.Errorf("delete connection %s: %w", c.ID, err)
				}
				r.log.Info().Str("connection_id", c.ID).Str("name", c.Name).Msg("connection deleted")
			}
		}
	} else {
		fmt.Fprintln(out, "No connections to delete.")
	}

	sources, err := r.gateway.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	var srcs []hookdeck.Source
	for _, s := range sources {
		if s.Name == SourceName {
			srcs = append(srcs, s)
		}
	}
	if len(srcs) > 0 {
		fmt.Fprintf(out, "Sources to delete:\n")
		for _, s := range srcs {
			fmt.Fprintf(out, "  %s  %s\n", s.ID, s.Name)
		}
		if assumeYes || confirm(reader, out, fmt.Sprintf("Delete %d source(s)?", len(srcs))) {
			for _, s := range srcs {
				if err := r.gateway.DeleteSource(ctx, s.ID); err != nil {
					return fmt.Errorf("delete source %s: %w", s.ID, err)
				}
				r.log.Info().Str("source_id", s.ID).Str("name", s.Name).Msg("source deleted")
			}
		}
	} else {
		fmt.Fprintln(out, "No sources to delete.")
	}

	destinations, err := r.gateway.ListDestinations(ctx)
	if err != nil {
		return fmt.Errorf("list destinations: %w", err)
	}
	var dests []hookdeck.Destination
	for _, d := range destinations {
		if ownedDestinations[d.Name] {
			dests = append(dests, d)
		}
	}
	if len(dests) > 0 {
		fmt.Fprintf(out, "Destinations to delete:\n")
		for _, d := range dests {
			fmt.Fprintf(out, "  %s  %s\n", d.ID, d.Name)
		}
		if assumeYes || confirm(reader, out, fmt.Sprintf("Delete %d destination(s)?", len(dests))) {
			for _, d := range dests {
				if err := r.gateway.DeleteDestination(ctx, d.ID); err != nil {
					return fmt.Errorf("delete destination %s: %w", d.ID, err)
				}
				r.log.Info().Str("destination_id", d.ID).Str("name", d.Name).Msg("destination deleted")
			}
		}
	} else {
		fmt.Fprintln(out, "No destinations to delete.")
	}

	return nil
}

func confirm(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
