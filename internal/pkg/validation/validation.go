package validation

import "regexp"

// Document numbers (repledge no, loan no): uppercase letters, digits,
// hyphens and slashes, 1-30 chars, as printed on the ledger books.
var documentNoRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9/\-]{0,29}$`)

// Bank codes: 3-11 uppercase letters/digits (IFSC-prefix style).
var bankCodeRe = regexp.MustCompile(`^[A-Z0-9]{3,11}$`)

func IsValidDocumentNo(no string) bool {
	return documentNoRe.MatchString(no)
}

func IsValidBankCode(code string) bool {
	return bankCodeRe.MatchString(code)
}
