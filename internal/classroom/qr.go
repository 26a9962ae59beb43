package classroom

import "crypto/rand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 12
)

// GenerateCode produces a fresh attendance QR code: 12 uppercase
// alphanumeric characters from a CSPRNG. Rotation replaces the stored
// code, which invalidates every previously issued one at once.
func GenerateCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken.
		panic("classroom: rand.Read: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// VerifyCode is an exact, case-sensitive comparison against the class's
// current code. Historical codes never match.
func VerifyCode(expected, submitted string) bool {
	return expected != "" && expected == submitted
}
