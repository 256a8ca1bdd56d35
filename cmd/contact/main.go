// contact 在命令行里填写并提交联系表单，走与浏览器相同的表单状态机。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"portfolio/internal/client"
	"portfolio/internal/form"
	"portfolio/internal/validation"
)

const (
	exitOK        = 0
	exitRejected  = 1
	exitTransport = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, nil))
}

type printer struct {
	w io.Writer
}

func (p printer) Success(msg string) { fmt.Fprintf(p.w, "✓ %s\n", msg) }
func (p printer) Failure(msg string) { fmt.Fprintf(p.w, "✗ %s\n", msg) }

// run submitter 为空时用 -endpoint 构造 HTTP 客户端
func run(args []string, stdout, stderr io.Writer, submitter form.Submitter) int {
	fs := flag.NewFlagSet("contact", flag.ContinueOnError)
	fs.SetOutput(stderr)

	endpoint := fs.String("endpoint", "http://localhost:8888", "contact service base URL")
	timeout := fs.Duration("timeout", form.DefaultTimeout, "submission timeout")
	var fields validation.Fields
	fs.StringVar(&fields.Name, "name", "", "your name")
	fs.StringVar(&fields.Email, "email", "", "your email")
	fs.StringVar(&fields.Subject, "subject", "", "message subject")
	fs.StringVar(&fields.Message, "message", "", "message body")

	if err := fs.Parse(args); err != nil {
		return exitRejected
	}

	if submitter == nil {
		c, err := client.NewContactClient(*endpoint, client.WithTimeout(*timeout))
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitTransport
		}
		submitter = c
	}

	ctrl := form.New(submitter, printer{w: stdout},
		form.WithTimeout(*timeout),
		form.WithFocus(func(f validation.Field) {
			fmt.Fprintf(stdout, "-> fix %s first\n", f)
		}),
	)

	for _, field := range validation.Order {
		// 字段都来自 validation.Order，不会是未知字段
		_ = ctrl.Change(field, fields.Get(field))
		_ = ctrl.Blur(field)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	outcome := ctrl.Submit(ctx)
	printErrors(stdout, ctrl.Errors())

	switch outcome {
	case form.OutcomeSent:
		return exitOK
	case form.OutcomeTransportError:
		return exitTransport
	default:
		return exitRejected
	}
}

func printErrors(w io.Writer, errs validation.FieldErrors) {
	for _, field := range validation.Order {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(w, "  %-8s %s\n", field+":", msg)
		}
	}
}
