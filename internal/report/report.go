// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package report wraps the agent's findings with run metadata and writes
// them to disk.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report is the agent's final text plus the metadata of the run that
// produced it.
type Report struct {
	ID          string
	Target      string
	Model       string
	GeneratedAt time.Time
	Body        string
}

// New builds a report with a fresh ID and the current time.
func New(target, model, body string) *Report {
	return &Report{
		ID:          uuid.NewString(),
		Target:      target,
		Model:       model,
		GeneratedAt: time.Now().UTC(),
		Body:        body,
	}
}

// Render produces the markdown document: a metadata header followed by the
// agent's findings verbatim.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString("# Red Team Analysis Report\n\n")
	fmt.Fprintf(&b, "- Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "- Target: %s\n", r.Target)
	fmt.Fprintf(&b, "- Model: %s\n", r.Model)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	b.WriteString("\n---\n\n")
	b.WriteString(strings.TrimRight(r.Body, "\n"))
	b.WriteString("\n")
	return b.String()
}

// Write renders the report to path.
func (r *Report) Write(path string) error {
	if err := os.WriteFile(path, []byte(r.Render()), 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
