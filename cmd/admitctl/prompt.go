package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dbs-admissions/admitd/internal/admission"
	"github.com/dbs-admissions/admitd/internal/protocol"
)

// collectRequest gathers one application interactively. Course selection and
// month are re-prompted until sensible; full validation is the server's job.
func collectRequest(in *bufio.Reader, out io.Writer) (protocol.Request, error) {
	fmt.Fprintln(out, "=== DBS Admission Application ===")

	name, err := promptLine(in, out, "Full Name: ")
	if err != nil {
		return protocol.Request{}, err
	}
	address, err := promptLine(in, out, "Address: ")
	if err != nil {
		return protocol.Request{}, err
	}
	qualifications, err := promptLine(in, out, "Educational Qualifications: ")
	if err != nil {
		return protocol.Request{}, err
	}

	course, err := promptCourse(in, out)
	if err != nil {
		return protocol.Request{}, err
	}
	startYear, err := promptYear(in, out)
	if err != nil {
		return protocol.Request{}, err
	}
	startMonth, err := promptMonth(in, out)
	if err != nil {
		return protocol.Request{}, err
	}

	return protocol.Request{
		Name:           name,
		Address:        address,
		Qualifications: qualifications,
		Course:         course,
		StartYear:      startYear,
		StartMonth:     startMonth,
	}, nil
}

func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptCourse(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "\nAvailable Courses:")
	for i, course := range admission.Courses {
		fmt.Fprintf(out, "  %d. %s\n", i+1, course)
	}

	for {
		choice, err := promptLine(in, out, fmt.Sprintf("Enter course number (1-%d): ", len(admission.Courses)))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(choice)
		if err == nil && n >= 1 && n <= len(admission.Courses) {
			return admission.Courses[n-1], nil
		}
		fmt.Fprintf(out, "Invalid choice. Please enter a number between 1 and %d.\n", len(admission.Courses))
	}
}

func promptYear(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		year, err := promptLine(in, out, "Intended start year (e.g. 2025): ")
		if err != nil {
			return "", err
		}
		if isDigits(year) {
			return year, nil
		}
		fmt.Fprintln(out, "Start year must contain only digits.")
	}
}

func promptMonth(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		month, err := promptLine(in, out, "Intended start month (1-12): ")
		if err != nil {
			return "", err
		}
		if !isDigits(month) {
			fmt.Fprintln(out, "Start month must contain only digits.")
			continue
		}
		if m, _ := strconv.Atoi(month); m >= 1 && m <= 12 {
			return month, nil
		}
		fmt.Fprintln(out, "Month must be between 1 and 12.")
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
