package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const invoicePHP = `<?php
/**
 * @ubiquitous Invoice
 * @context Billing
 * @description A bill sent to a customer
 */
class Invoice {}
`

const orderJava = `package shop;

/**
 * @ubiquitous Order
 * @context Sales
 */
public class Order {}
`

// writeSourceTree creates a small project with one documented PHP class
// and one documented Java class and returns its root.
func writeSourceTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "src", "Invoice.php"), invoicePHP)
	writeTestFile(t, filepath.Join(root, "src", "Order.java"), orderJava)
	writeTestFile(t, filepath.Join(root, "README.md"), "# shop\n")
	return root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
