package nfse

import (
	"strings"
	"unicode"
)

// pesos del módulo 11 para CNPJ (12 y 13 posiciones). El CPF usa pesos decrecientes desde 10/11.
var (
	cnpjWeights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits elimina todo carácter que no sea dígito ("12.345.678/0001-90" -> "12345678000190").
func OnlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ValidCPF verifica los dos dígitos verificadores de un CPF (con o sin máscara).
func ValidCPF(cpf string) bool {
	d := OnlyDigits(cpf)
	if len(d) != 11 || allSame(d) {
		return false
	}
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		if checkDigit(sum) != d[n] {
			return false
		}
	}
	return true
}

// ValidCNPJ verifica los dos dígitos verificadores de un CNPJ (con o sin máscara).
func ValidCNPJ(cnpj string) bool {
	d := OnlyDigits(cnpj)
	if len(d) != 14 || allSame(d) {
		return false
	}
	sum := 0
	for i, w := range cnpjWeights1 {
		sum += int(d[i]-'0') * w
	}
	if checkDigit(sum) != d[12] {
		return false
	}
	sum = 0
	for i, w := range cnpjWeights2 {
		sum += int(d[i]-'0') * w
	}
	return checkDigit(sum) == d[13]
}

func checkDigit(sum int) byte {
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}

func allSame(s string) bool {
	return strings.Count(s, s[:1]) == len(s)
}
