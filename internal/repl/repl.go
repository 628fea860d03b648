// Package repl runs the interactive conversion prompt.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ameliorater/unit-converter/internal/convert"
	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/query"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// Prompt is printed before every line of input.
const Prompt = "Please enter a unit conversion: \n(example: 2.4 meters in mm)"

const help = `Type a conversion such as "2.4 meters in mm", "60 miles/hour to km/hour"
or "3 ft -> in". Separators: to, in, ->, =. Ratios: "/" or "per".
Commands:
  list, units   print every known unit
  help          show this text
  quit, exit    leave the prompt`

// Run reads queries from in and writes answers to out until in is exhausted,
// a quit command is read, or ctx is cancelled. Bad queries print a message
// and the loop continues.
func Run(ctx context.Context, eng *engine.Engine, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprintln(out, Prompt)
		if !sc.Scan() {
			return sc.Err()
		}

		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, help)
			continue
		case "list", "units":
			PrintUnits(out, eng.Units())
			continue
		}

		res, err := eng.Convert(line)
		if err != nil {
			slog.Debug("repl: conversion failed", "query", line, "err", err)
			fmt.Fprintln(out, Message(err))
			continue
		}
		fmt.Fprintln(out, res)
	}
}

// PrintUnits writes one unit per line as "name(abbrev)".
func PrintUnits(w io.Writer, units []*unitgraph.Unit) {
	for _, u := range units {
		fmt.Fprintln(w, u)
	}
}

// Message turns a conversion error into the line shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, convert.ErrNoPath):
		return "Not a valid conversion"
	case errors.Is(err, unitgraph.ErrUnresolvedUnit):
		var parts []string
		for _, e := range flatten(err) {
			var ue *unitgraph.UnresolvedError
			if !errors.As(e, &ue) {
				continue
			}
			if ue.Reason == unitgraph.ReasonAmbiguous {
				parts = append(parts, fmt.Sprintf("%q is ambiguous: %s", ue.Query, strings.Join(ue.Candidates, ", ")))
			} else {
				parts = append(parts, fmt.Sprintf("%q is not a valid unit", ue.Query))
			}
		}
		return strings.Join(parts, "; ")
	}

	var qe *query.QuantityError
	if errors.As(err, &qe) {
		return fmt.Sprintf("%q is not a valid number", qe.Text)
	}
	var se *query.SyntaxError
	if errors.As(err, &se) {
		return "Could not understand that: " + se.Msg
	}
	return err.Error()
}

// flatten expands errors.Join results.
func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}
