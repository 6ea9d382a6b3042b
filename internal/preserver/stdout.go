package preserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/catalog"
)

// Stdout prints each snapshot record as a JSON line. Useful for dry
// runs and debugging.
type Stdout struct{}

func (s *Stdout) Preserve(ctx context.Context, record *internal.Record) error {
	bs, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(bs))
	return nil
}

func (s *Stdout) Finalize(ctx context.Context, report *catalog.Report) error {
	bs, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Println(string(bs))
	return nil
}
