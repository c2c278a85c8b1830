// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalog_CoversEveryId(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(PermissionDeniedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), PermissionDeniedId)
	}
	for i, iss := range values {
		want := Id(i + 1)
		if iss.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d (ordered, no gaps)", i, iss.Id(), want)
		}
		if Get(want) != iss {
			t.Errorf("Get(%d) does not return the catalog entry", want)
		}
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no message", want)
		}
	}

	if Get(0) != nil || Get(PermissionDeniedId+1) != nil {
		t.Error("Get() of an unknown id should return nil")
	}
}

func TestCatalog_Suggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   Id
		want string
	}{
		{ConfigUnreadableId, ".hamrc"},
		{ArtifactNotFoundId, "import-binary"},
		{TargetMismatchId, "--target"},
		{LockHeldId, "lock.wait"},
		{SettingsLoadFailedId, "ham settings"},
	}

	for _, tt := range tests {
		msg := string(Get(tt.id).MarkdownMsg())
		if !strings.Contains(msg, tt.want) {
			t.Errorf("issue %d should mention %q:\n%s", tt.id, tt.want, msg)
		}
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	iss := &Issue{id: LockHeldId, docLinks: []HttpLink{"https://a"}, extLinks: []HttpLink{"https://b"}}
	iss.DocLinks()[0] = "changed"
	iss.ExtLinks()[0] = "changed"
	if iss.docLinks[0] != "https://a" || iss.extLinks[0] != "https://b" {
		t.Error("DocLinks/ExtLinks must return copies")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, iss := range Values() {
		out, err := iss.Render("notty")
		if err != nil {
			t.Fatalf("Render(%d) error = %v", iss.Id(), err)
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%d) produced no output", iss.Id())
		}
	}
}

func TestIssue_RenderAppendsLinks(t *testing.T) {
	t.Parallel()

	iss := &Issue{
		id:       LockHeldId,
		mdMsg:    "# Locked",
		docLinks: []HttpLink{"https://docs.example/lock"},
	}
	out, err := iss.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "https://docs.example/lock") {
		t.Errorf("Render() should list links:\n%s", out)
	}
}
