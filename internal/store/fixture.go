package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/papersearch/internal/ir"
)

// Fixture is a YAML description of a conference database:
//
//	contacts:
//	  - {id: 1, email: chair@example.org, roles: 4}
//	papers:
//	  - id: 1
//	    title: Graph algorithms
//	    submitted: 100
//	    tags: [green, "order#2"]
//	    conflicts: {4: 64}
//	    reviews:
//	      - {id: 1, contact: 2, type: 4, submitted: true, scores: {overAllMerit: 3}}
type Fixture struct {
	Contacts []ir.Contact   `yaml:"contacts"`
	Papers   []FixturePaper `yaml:"papers"`
}

// FixturePaper is one paper of a Fixture.
type FixturePaper struct {
	ID            int             `yaml:"id"`
	Title         string          `yaml:"title"`
	Abstract      string          `yaml:"abstract"`
	Authors       []ir.Author     `yaml:"authors"`
	Collaborators string          `yaml:"collaborators"`
	Submitted     int64           `yaml:"submitted"`
	Withdrawn     int64           `yaml:"withdrawn"`
	Outcome       int             `yaml:"outcome"`
	Lead          int             `yaml:"lead"`
	Shepherd      int             `yaml:"shepherd"`
	Manager       int             `yaml:"manager"`
	Blind         *bool           `yaml:"blind"`
	Tags          []string        `yaml:"tags"`
	Conflicts     map[int]int     `yaml:"conflicts"`
	Reviews       []FixtureReview `yaml:"reviews"`
}

// FixtureReview is one review of a FixturePaper.
type FixtureReview struct {
	ID          int            `yaml:"id"`
	Contact     int            `yaml:"contact"`
	Type        int            `yaml:"type"`
	Round       int            `yaml:"round"`
	Submitted   bool           `yaml:"submitted"`
	RequestedBy int            `yaml:"requested_by"`
	Words       int            `yaml:"words"`
	Scores      map[string]int `yaml:"scores"`
}

// ParseFixture decodes a fixture. Unknown fields are errors.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// ReadFixtureFile reads and parses the fixture at path.
func ReadFixtureFile(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	defer fh.Close()
	f, err := ParseFixture(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadFixtureFile reads a fixture from path and loads it.
func (s *Store) LoadFixtureFile(ctx context.Context, path string) error {
	f, err := ReadFixtureFile(path)
	if err != nil {
		return err
	}
	return s.LoadFixture(ctx, f)
}

// LoadFixture writes every contact and paper of f. Existing rows with the
// same ids are replaced.
func (s *Store) LoadFixture(ctx context.Context, f *Fixture) error {
	for i := range f.Contacts {
		if err := s.InsertContact(ctx, &f.Contacts[i]); err != nil {
			return err
		}
	}
	for _, p := range f.Papers {
		if err := s.loadPaper(ctx, p); err != nil {
			return err
		}
	}
	s.logger.Debug("fixture loaded", "contacts", len(f.Contacts), "papers", len(f.Papers))
	return nil
}

func (s *Store) loadPaper(ctx context.Context, p FixturePaper) error {
	row := &ir.PaperRow{
		PaperID:           p.ID,
		Title:             p.Title,
		Abstract:          p.Abstract,
		AuthorInformation: ir.FormatAuthors(p.Authors),
		Collaborators:     p.Collaborators,
		TimeSubmitted:     p.Submitted,
		TimeWithdrawn:     p.Withdrawn,
		Outcome:           p.Outcome,
		LeadContactID:     p.Lead,
		ShepherdContactID: p.Shepherd,
		ManagerContactID:  p.Manager,
		Blind:             p.Blind == nil || *p.Blind,
	}
	if err := s.InsertPaper(ctx, row); err != nil {
		return err
	}
	for _, t := range p.Tags {
		tag, value, err := splitFixtureTag(t)
		if err != nil {
			return fmt.Errorf("paper %d: %w", p.ID, err)
		}
		if err := s.SetTag(ctx, p.ID, tag, value); err != nil {
			return err
		}
	}
	for cid, ct := range p.Conflicts {
		if err := s.SetConflict(ctx, p.ID, cid, ct); err != nil {
			return err
		}
	}
	for _, r := range p.Reviews {
		ri := ir.ReviewInfo{
			ReviewID:    r.ID,
			ContactID:   r.Contact,
			ReviewType:  r.Type,
			Submitted:   r.Submitted,
			Round:       r.Round,
			RequestedBy: r.RequestedBy,
			Scores:      r.Scores,
		}
		if err := s.InsertReview(ctx, p.ID, ri, r.Words); err != nil {
			return err
		}
	}
	return nil
}

// splitFixtureTag splits "tag#value"; a bare tag has value 0.
func splitFixtureTag(t string) (string, float64, error) {
	tag, v, ok := strings.Cut(t, "#")
	if tag == "" {
		return "", 0, fmt.Errorf("empty tag in %q", t)
	}
	if !ok {
		return tag, 0, nil
	}
	value, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad tag value in %q: %w", t, err)
	}
	return tag, value, nil
}
