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

package inspect

import "testing"

func TestWithDefaultsFillsEmptyFields(t *testing.T) {
	lim := Limits{}.withDefaults()
	if lim.MaxDepth != 2 || lim.MaxFiles != 50 || lim.MaxFileBytes != 100_000 || lim.MaxLinesPerRequest != 100 {
		t.Fatalf("unexpected defaults: %+v", lim)
	}
	if !lim.Excluded(".git") || !lim.Excluded("node_modules") || !lim.Excluded("vtm_venv") {
		t.Fatal("expected conventional tooling directories in the exclusion set")
	}
	if lim.Excluded("src") {
		t.Fatal("expected ordinary names to survive")
	}
}

func TestWithDefaultsKeepsCallerValues(t *testing.T) {
	lim := Limits{ExcludeNames: []string{"skipme"}, MaxDepth: 5, MaxFiles: 3}.withDefaults()
	if lim.MaxDepth != 5 || lim.MaxFiles != 3 {
		t.Fatalf("expected caller values to survive, got %+v", lim)
	}
	if !lim.Excluded("skipme") || lim.Excluded(".git") {
		t.Fatal("expected caller exclusion set to replace the default")
	}
	if lim.MaxFileBytes != 100_000 {
		t.Fatalf("expected unset fields to fall back, got %+v", lim)
	}
}
