package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
	"carfixer/backend/internal/store/postgres"
)

type mechanicsFile struct {
	Mechanics []mechanicEntry `yaml:"mechanics"`
}

type mechanicEntry struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	PhotoURL string `yaml:"photo_url"`
}

// NewSeedMechanicsCommand creates the seed-mechanics command.
func NewSeedMechanicsCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-mechanics",
		Short: "Insert or update mechanics from a YAML roster",
		Long: `Insert or update mechanics from a YAML roster:

  mechanics:
    - id: 1
      name: Aisha Rahman
      photo_url: https://example.com/aisha.jpg

Entries with an id overwrite the existing mechanic; entries without one are
inserted.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			mechanics, err := parseMechanics(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			return rootOpts.withDB(cmd, func(ctx context.Context, db *bun.DB) error {
				return seedMechanics(ctx, postgres.NewMechanicRepo(db), mechanics, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML roster file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseMechanics(r io.Reader) ([]domain.Mechanic, error) {
	var doc mechanicsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("roster is empty")
		}
		return nil, err
	}
	if len(doc.Mechanics) == 0 {
		return nil, errors.New("roster has no mechanics")
	}

	seen := make(map[int64]bool)
	out := make([]domain.Mechanic, 0, len(doc.Mechanics))
	for i, e := range doc.Mechanics {
		name := domain.NormalizeField(e.Name)
		if name == "" {
			return nil, fmt.Errorf("mechanics[%d]: name is required", i)
		}
		if e.ID < 0 {
			return nil, fmt.Errorf("mechanics[%d]: id must be positive", i)
		}
		if e.ID > 0 {
			if seen[e.ID] {
				return nil, fmt.Errorf("mechanics[%d]: duplicate id %d", i, e.ID)
			}
			seen[e.ID] = true
		}
		out = append(out, domain.Mechanic{ID: e.ID, Name: name, PhotoURL: strings.TrimSpace(e.PhotoURL)})
	}
	return out, nil
}

func seedMechanics(ctx context.Context, w store.MechanicWriter, mechanics []domain.Mechanic, out io.Writer) error {
	for _, m := range mechanics {
		saved, err := w.UpsertMechanic(ctx, m)
		if err != nil {
			return fmt.Errorf("upsert %q: %w", m.Name, err)
		}
		if _, err := fmt.Fprintf(out, "mechanic %d %s\n", saved.ID, saved.Name); err != nil {
			return err
		}
	}
	return nil
}
