package main_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/meigma/artisign/cmd/artisign/cli"
)

// signerURL holds the fake signing service URL for all tests (set once in TestMain).
var signerURL string

func TestMain(m *testing.M) {
	server := httptest.NewServer(http.HandlerFunc(signingHandler))
	signerURL = server.URL + "/sign"

	// Run tests with artisign command available
	exitCode := testscript.RunMain(m, map[string]func() int{
		"artisign": func() int {
			if err := cli.Execute(); err != nil {
				return 1
			}
			return 0
		},
	})

	server.Close()
	os.Exit(exitCode)
}

func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("SIGNER", signerURL)
			// testscript sets HOME=/no-home, so keep config under the work directory
			env.Setenv("XDG_CONFIG_HOME", env.WorkDir+"/.config")
			return nil
		},
	})
}

// signingHandler appends a signature trailer to the uploaded file.
// Files named "reject*" fail with 500 and the bearer token "revoked" with 401.
func signingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "Bearer revoked" {
		http.Error(w, "token revoked", http.StatusUnauthorized)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if strings.HasPrefix(header.Filename, "reject") {
		http.Error(w, "certificate revoked", http.StatusInternalServerError)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "%ssigned-by: test-signer\n", data)
}
