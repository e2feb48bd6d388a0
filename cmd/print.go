package cmd

import (
	"fmt"
	"strings"
)

// Terminal colors for human-readable command output
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

func printHeader(title, subject string) {
	fmt.Printf("%s%s%s%s: %s%s%s\n", ColorBold, ColorBlue, title, ColorReset, ColorCyan, subject, ColorReset)
	fmt.Printf("%s%s%s\n\n", ColorBlue, strings.Repeat("═", 80), ColorReset)
}

func printSectionHeader(title string) {
	fmt.Printf("%s%s%s%s\n", ColorBold, ColorBlue, title, ColorReset)
}

func printSuccess(format string, args ...any) {
	fmt.Printf("   %s✓%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Printf("   %s⚠%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("   %s•%s %s\n", ColorCyan, ColorReset, fmt.Sprintf(format, args...))
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}
