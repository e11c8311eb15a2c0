package registry

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

const pathTestPrefix = "registry:path_test"

func TestCommandPath_Key(t *testing.T) {
	tests := []struct {
		name string
		path CommandPath
		want string
	}{
		{"root", Root("test"), "test"},
		{"sub", NewCommandPath("test", "sub"), "test|sub"},
		{"group", NewCommandPath("test", "group", "sub"), "test|group|sub"},
		{"child", Root("test").Child("sub"), "test|sub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.Key(); got != tt.want {
				t.Errorf("%s - Key() = %q, want %q", pathTestPrefix, got, tt.want)
			}
			if got := ParseKey(tt.want).Key(); got != tt.want {
				t.Errorf("%s - ParseKey(%q).Key() = %q", pathTestPrefix, tt.want, got)
			}
		})
	}
}

func TestCommandPath_DistinctShapesDistinctKeys(t *testing.T) {
	paths := []CommandPath{
		Root("test"),
		NewCommandPath("test", "sub"),
		NewCommandPath("test", "group", "sub"),
		NewCommandPath("test", "group"),
		Root("sub"),
	}
	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p.Key()] {
			t.Errorf("%s - duplicate key %q", pathTestPrefix, p.Key())
		}
		seen[p.Key()] = true
	}
}

func TestCommandPath_ChildDoesNotAlias(t *testing.T) {
	base := NewCommandPath("a", "b")
	c1 := base.Child("c")
	c2 := base.Child("d")
	if c1.Key() != "a|b|c" || c2.Key() != "a|b|d" {
		t.Errorf("%s - children alias each other: %q %q", pathTestPrefix, c1.Key(), c2.Key())
	}
	if base.Key() != "a|b" {
		t.Errorf("%s - base mutated: %q", pathTestPrefix, base.Key())
	}
	segs := base.Segments()
	segs[0] = "x"
	if base.Root() != "a" {
		t.Errorf("%s - Segments() must return a copy", pathTestPrefix)
	}
	if base.String() != "a b" {
		t.Errorf("%s - String() = %q, want %q", pathTestPrefix, base.String(), "a b")
	}
}

func commandData(t *testing.T, raw string) *discordgo.ApplicationCommandInteractionData {
	t.Helper()
	var data discordgo.ApplicationCommandInteractionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("%s - unmarshal command data: %v", pathTestPrefix, err)
	}
	return &data
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantKey     string
		wantOptions []string
	}{
		{
			name:    "root only",
			raw:     `{"name":"ping"}`,
			wantKey: "ping",
		},
		{
			name:        "root with scalar options",
			raw:         `{"name":"echo","options":[{"type":3,"name":"text","value":"hi"}]}`,
			wantKey:     "echo",
			wantOptions: []string{"text"},
		},
		{
			name:        "subcommand",
			raw:         `{"name":"info","options":[{"type":1,"name":"version","options":[{"type":5,"name":"verbose","value":true}]}]}`,
			wantKey:     "info|version",
			wantOptions: []string{"verbose"},
		},
		{
			name: "group and subcommand",
			raw: `{"name":"admin","options":[{"type":2,"name":"roles","options":[
				{"type":1,"name":"add","options":[{"type":3,"name":"role","value":"mod"},{"type":6,"name":"user","value":"1"}]}
			]}]}`,
			wantKey:     "admin|roles|add",
			wantOptions: []string{"role", "user"},
		},
		{
			name:    "subcommand without options",
			raw:     `{"name":"info","options":[{"type":1,"name":"uptime"}]}`,
			wantKey: "info|uptime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, opts := PathFor(commandData(t, tt.raw))
			if path.Key() != tt.wantKey {
				t.Errorf("%s - key = %q, want %q", pathTestPrefix, path.Key(), tt.wantKey)
			}
			var names []string
			for _, o := range opts {
				names = append(names, o.Name)
			}
			if !reflect.DeepEqual(names, tt.wantOptions) {
				t.Errorf("%s - options = %v, want %v", pathTestPrefix, names, tt.wantOptions)
			}
		})
	}
}

func TestPathFor_Nil(t *testing.T) {
	path, opts := PathFor(nil)
	if path.Depth() != 0 || opts != nil {
		t.Errorf("%s - expected empty path for nil data", pathTestPrefix)
	}
}

func TestRequest_Options(t *testing.T) {
	_, opts := PathFor(commandData(t, `{"name":"echo","options":[{"type":3,"name":"text","value":"hi"},{"type":4,"name":"n","value":2}]}`))
	req := &Request{Options: opts}

	if got := req.StringOption("text"); got != "hi" {
		t.Errorf("%s - StringOption(text) = %q, want hi", pathTestPrefix, got)
	}
	if got := req.StringOption("n"); got != "" {
		t.Errorf("%s - StringOption(n) = %q, want empty for non-string", pathTestPrefix, got)
	}
	if _, ok := req.Option("missing"); ok {
		t.Errorf("%s - Option(missing) should not be found", pathTestPrefix)
	}
	if req.UserID() != "" {
		t.Errorf("%s - UserID() without interaction should be empty", pathTestPrefix)
	}
}
