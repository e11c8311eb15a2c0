package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/morezero/interaction-router/pkg/envelope"
)

const registryTestPrefix = "registry:registry_test"

func textHandler(s string) Handler {
	return TextFunc(func(context.Context, *Request) string { return s })
}

func reply(t *testing.T, h Handler) string {
	t.Helper()
	res, err := h.Handle(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("%s - Handle: %v", registryTestPrefix, err)
	}
	text, ok := res.(envelope.Text)
	if !ok {
		t.Fatalf("%s - expected Text result, got %T", registryTestPrefix, res)
	}
	return string(text)
}

func TestRegister_RootAndSubcommandKeys(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Root("test"), textHandler("test"))
	reg.MustRegister(NewCommandPath("test", "sub"), textHandler("test sub"))

	want := []string{"test", "test|sub"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("%s - Keys() = %v, want %v", registryTestPrefix, got, want)
	}
	if reg.Len() != 2 {
		t.Errorf("%s - Len() = %d, want 2", registryTestPrefix, reg.Len())
	}
}

func TestLookup_SurvivesUnrelatedRegistrations(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(NewCommandPath("admin", "roles", "add"), textHandler("add"))

	for i := 0; i < 50; i++ {
		reg.MustRegister(Root(fmt.Sprintf("cmd%d", i)), textHandler("x"))
	}

	cmd, ok := reg.Lookup("admin|roles|add")
	if !ok {
		t.Fatalf("%s - expected admin|roles|add to be registered", registryTestPrefix)
	}
	if got := reply(t, cmd.Handler()); got != "add" {
		t.Errorf("%s - handler reply = %q, want add", registryTestPrefix, got)
	}
	if cmd.Path().Depth() != 3 || cmd.Path().Root() != "admin" {
		t.Errorf("%s - Path() = %v, want admin roles add", registryTestPrefix, cmd.Path())
	}
}

func TestRegister_LastWriteWins(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Root("ping"), textHandler("first"))
	reg.MustRegister(Root("ping"), textHandler("second"), WithDescription("replacement"))

	if reg.Len() != 1 {
		t.Fatalf("%s - Len() = %d, want 1", registryTestPrefix, reg.Len())
	}
	cmd, _ := reg.Lookup("ping")
	if got := reply(t, cmd.Handler()); got != "second" {
		t.Errorf("%s - reply = %q, want second", registryTestPrefix, got)
	}
	if cmd.Description() != "replacement" {
		t.Errorf("%s - Description() = %q, want replacement", registryTestPrefix, cmd.Description())
	}
}

func TestRegister_Invalid(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		path    CommandPath
		handler Handler
		wantErr error
	}{
		{"empty path", NewCommandPath(), textHandler("x"), ErrInvalidPath},
		{"blank segment", NewCommandPath("a", " "), textHandler("x"), ErrInvalidPath},
		{"separator in name", Root("a|b"), textHandler("x"), ErrInvalidPath},
		{"too deep", NewCommandPath("a", "b", "c", "d"), textHandler("x"), ErrInvalidPath},
		{"nil handler", Root("a"), nil, ErrNilHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.path, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s - Register() error = %v, want %v", registryTestPrefix, err, tt.wantErr)
			}
		})
	}
	if reg.Len() != 0 {
		t.Errorf("%s - invalid registrations must not be stored, Len() = %d", registryTestPrefix, reg.Len())
	}
}

func TestMustRegister_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("%s - expected panic for invalid path", registryTestPrefix)
		}
	}()
	NewRegistry().MustRegister(Root(""), textHandler("x"))
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Root("ping"), textHandler("pong"))

	if !reg.Unregister("ping") {
		t.Errorf("%s - expected Unregister to report removal", registryTestPrefix)
	}
	if reg.Unregister("ping") {
		t.Errorf("%s - second Unregister should report false", registryTestPrefix)
	}
	if _, ok := reg.Lookup("ping"); ok {
		t.Errorf("%s - ping still registered", registryTestPrefix)
	}
}

func TestCommands_SortedSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Root("zeta"), textHandler("z"))
	reg.MustRegister(Root("alpha"), textHandler("a"), WithDescription("first"))

	cmds := reg.Commands()
	if len(cmds) != 2 || cmds[0].Key() != "alpha" || cmds[1].Key() != "zeta" {
		t.Fatalf("%s - unexpected snapshot order", registryTestPrefix)
	}
	if cmds[0].Description() != "first" {
		t.Errorf("%s - Description() = %q, want first", registryTestPrefix, cmds[0].Description())
	}
}

func TestRegistry_ConcurrentLookupsAndRegistrations(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Root("ping"), textHandler("pong"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				reg.MustRegister(NewCommandPath("bulk", fmt.Sprintf("w%d-%d", n, j)), textHandler("x"))
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if _, ok := reg.Lookup("ping"); !ok {
					t.Errorf("%s - ping lookup missed during concurrent writes", registryTestPrefix)
					return
				}
			}
		}()
	}
	wg.Wait()

	if reg.Len() != 1+8*200 {
		t.Errorf("%s - Len() = %d, want %d", registryTestPrefix, reg.Len(), 1+8*200)
	}
}
