package main

import (
	"go/token"
	"strings"
	"unicode"
)

// initialisms are kept upper-case in Go names.
var initialisms = map[string]bool{
	"ID": true, "IO": true, "LED": true, "PWM": true, "ADC": true, "DAC": true,
	"I2C": true, "SPI": true, "UART": true, "RTC": true, "CRC": true, "URL": true,
}

// splitWords splits camelCase, snake_case and kebab-case names into words.
func splitWords(name string) []string {
	var words []string
	var cur []rune
	runes := []rune(name)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// "pinMode" -> pin|Mode, "readADCValue" -> read|ADC|Value
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// goTitleCase converts "pinMode" to "PinMode" and "led_state" to "LEDState".
func goTitleCase(name string) string {
	var b strings.Builder
	for _, w := range splitWords(name) {
		if up := strings.ToUpper(w); initialisms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// firstLower lower-cases the leading word: "PinMode" -> "pinMode", "LEDState" -> "ledState".
func firstLower(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	words[0] = strings.ToLower(words[0])
	for i := 1; i < len(words); i++ {
		words[i] = goTitleCase(words[i])
	}
	return strings.Join(words, "")
}

// cName converts "pinMode" to "PIN_MODE".
func cName(name string) string {
	return strings.ToUpper(strings.Join(splitWords(name), "_"))
}

// cLower converts "pinMode" to "pin_mode".
func cLower(name string) string {
	return strings.ToLower(strings.Join(splitWords(name), "_"))
}

func validIdent(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name)
}
