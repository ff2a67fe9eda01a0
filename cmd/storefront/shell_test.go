package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/angelmondragon/moda-storefront/internal/storefront"
	"github.com/angelmondragon/moda-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

func runShell(t *testing.T, script string) string {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Env: config.AppEnvDev},
		Storage:  config.StorageConfig{Driver: "memory"},
		Catalog:  config.CatalogConfig{FetchTimeout: time.Second},
		Checkout: config.CheckoutConfig{Locale: "es-UY", Currency: "UYU"},
	}
	reg := prometheus.NewRegistry()
	session, err := storefront.Open(context.Background(), cfg, nil, reg)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })

	out := &bytes.Buffer{}
	if err := newShell(session, out, reg).Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestShellCartFlow(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		"add camisa",
		"coupon moda300",
		"add gorra",
		"inc camisa",
		"coupon nuevo10",
		"checkout",
		"orders",
		"quit",
		"add camisa",
	}, "\n"))

	for _, want := range []string{
		"items 3",
		"coupon rejected: this coupon requires a minimum of",
		"coupon applied: NUEVO10",
		"order ORD-",
		"coupon NUEVO10",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "order ORD-") != 1 {
		t.Fatalf("commands after quit must not run:\n%s", out)
	}
}

func TestShellReportsValidationMessages(t *testing.T) {
	out := runShell(t, "checkout\nnew X;0;-1;\nfoo\n")
	for _, want := range []string{
		"- your cart is empty",
		"- name must have at least 2 characters",
		"- price must be greater than 0",
		"- stock must be a whole number of at least 0",
		`unknown command "foo"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShellListing(t *testing.T) {
	out := runShell(t, "sort priceAsc\ncategory calzado\nlist zzz\nadd nope\n")
	if !strings.Contains(out, "Championes") {
		t.Fatalf("expected calzado listing:\n%s", out)
	}
	if !strings.Contains(out, "no products match") {
		t.Fatalf("expected empty listing:\n%s", out)
	}
	if !strings.Contains(out, `unknown product "nope"`) {
		t.Fatalf("expected unknown product message:\n%s", out)
	}
}

func TestShellMetrics(t *testing.T) {
	out := runShell(t, "add camisa\nadd nope\ncoupon nope\nmetrics\n")
	for _, want := range []string{
		`cart_operations_total{op="add",outcome="applied"} 1`,
		`coupon_applications_total{outcome="rejected"} 1`,
		"# TYPE checkout_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestShellReportTypedErrors(t *testing.T) {
	out := &bytes.Buffer{}
	sh := newShell(nil, out, nil)

	if !sh.report(pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "persist cart")) {
		t.Fatal("typed errors should keep the shell running")
	}
	if got, want := out.String(), "error: storage unavailable: persist cart (try again)\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	out.Reset()
	sh.report(pkgerrors.New(pkgerrors.CodeNotFound, "product p-9"))
	if got, want := out.String(), "error: resource not found\n"; got != want {
		t.Fatalf("details must be hidden for not found, got %q", got)
	}

	if sh.report(errors.New("boom")) {
		t.Fatal("untyped errors should stop the shell")
	}
	if sh.metrics() != nil || !strings.Contains(out.String(), "metrics unavailable") {
		t.Fatalf("expected metrics unavailable without a gatherer, got %q", out.String())
	}
}

func TestShutdownSignals(t *testing.T) {
	for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
		if !slices.Contains(shutdownSignals, sig) {
			t.Fatalf("expected %v to stop the storefront", sig)
		}
	}
}
