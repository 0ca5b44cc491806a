package app

import (
	"bytes"
	"os"
	"testing"

	. "github.com/onsi/gomega"

	"cosmorain/internal/config"
)

// setEnv sets the named variables, unsetting those mapped to "-".
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, "")
		if v == "-" {
			os.Unsetenv(k)
		} else {
			os.Setenv(k, v)
		}
	}
}

func TestDoctorUTF8Truecolor(t *testing.T) {
	g := NewWithT(t)
	setEnv(t, map[string]string{
		"LANG":      "en_US.UTF-8",
		"LC_ALL":    "-",
		"LC_CTYPE":  "-",
		"TERM":      "xterm-256color",
		"COLORTERM": "truecolor",
	})
	cfg := config.Default()
	cfg.Charset = "katakana"

	var buf bytes.Buffer
	g.Expect(Doctor(&buf, cfg)).To(Succeed())
	out := buf.String()

	g.Expect(out).To(HavePrefix("DOCTOR REPORT:\n"))
	g.Expect(out).To(ContainSubstring("  LANG: en_US.UTF-8\n"))
	g.Expect(out).To(ContainSubstring("  LC_ALL: (unset)\n"))
	g.Expect(out).To(ContainSubstring("  locale_utf8: yes\n"))
	g.Expect(out).To(ContainSubstring("  color_auto_detected: 24-bit truecolor\n"))
	g.Expect(out).NotTo(ContainSubstring("color_forced"))
	g.Expect(out).To(ContainSubstring("  color_effective: 24-bit truecolor\n"))
	g.Expect(out).To(ContainSubstring("  default_to_ascii: no\n"))
	g.Expect(out).To(ContainSubstring("  charset: katakana\n"))
	g.Expect(out).NotTo(ContainSubstring("charset_normalized"))
	g.Expect(out).To(ContainSubstring("  chars_override: no\n"))
	g.Expect(out).To(ContainSubstring("SAMPLE GLYPHS:\n  ascii: 01 ABC abc !@#\n"))
	g.Expect(out).To(ContainSubstring("  katakana: ｱｲｳｴｵｶｷｸｹｺ\n"))
	g.Expect(out).To(ContainSubstring("CJK coverage"))
	g.Expect(out).NotTo(ContainSubstring("truecolor terminal"))
}

func TestDoctorPlainLocale(t *testing.T) {
	g := NewWithT(t)
	setEnv(t, map[string]string{
		"LANG":      "C",
		"LC_ALL":    "-",
		"LC_CTYPE":  "-",
		"TERM":      "xterm",
		"COLORTERM": "-",
	})
	cfg := config.Default()
	cfg.Charset = " BIN "
	cfg.ColorMode = "16"
	cfg.Chars = "30,39"

	var buf bytes.Buffer
	g.Expect(Doctor(&buf, cfg)).To(Succeed())
	out := buf.String()

	g.Expect(out).To(ContainSubstring("  locale_utf8: no\n"))
	g.Expect(out).To(ContainSubstring("  COLORTERM: (unset)\n"))
	g.Expect(out).To(ContainSubstring("  color_forced: 16-color\n"))
	g.Expect(out).To(ContainSubstring("  color_effective: 16-color\n"))
	g.Expect(out).To(ContainSubstring("  default_to_ascii: yes\n"))
	g.Expect(out).To(ContainSubstring("  charset: BIN\n"))
	g.Expect(out).To(ContainSubstring("  charset_normalized: binary\n"))
	g.Expect(out).To(ContainSubstring("  chars_override: yes\n"))
	g.Expect(out).NotTo(ContainSubstring("SAMPLE GLYPHS"))
	g.Expect(out).To(ContainSubstring("  - try: export LANG=en_US.UTF-8\n"))
	g.Expect(out).To(ContainSubstring("  - for best colors use a truecolor terminal (COLORTERM=truecolor)\n"))
}

func TestDoctorUnknownCharset(t *testing.T) {
	g := NewWithT(t)
	cfg := config.Default()
	cfg.Charset = "klingon"

	var buf bytes.Buffer
	g.Expect(Doctor(&buf, cfg)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring("  charset_parse_error: unsupported charset: klingon"))
}

func TestDoctorEmptyCharset(t *testing.T) {
	g := NewWithT(t)
	cfg := config.Default()
	cfg.Charset = ""

	var buf bytes.Buffer
	g.Expect(Doctor(&buf, cfg)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring("  charset: (empty)\n"))
}

func TestCheckBitColor(t *testing.T) {
	g := NewWithT(t)
	setEnv(t, map[string]string{"COLORTERM": "truecolor", "TERM": "xterm-256color"})

	var buf bytes.Buffer
	g.Expect(CheckBitColor(&buf, config.Default())).To(Succeed())
	g.Expect(buf.String()).To(Equal("BITCOLOR CHECK:\n" +
		"  COLORTERM: truecolor\n" +
		"  TERM: xterm-256color\n" +
		"  auto_detected: 24-bit truecolor\n" +
		"  effective: 24-bit truecolor\n"))

	cfg := config.Default()
	cfg.ColorMode = "256"
	buf.Reset()
	g.Expect(CheckBitColor(&buf, cfg)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring("  forced: 8-bit (256-color)\n  effective: 8-bit (256-color)\n"))
}
