package output

import (
	"strconv"
	"strings"

	"github.com/coregx/coregrep/search"
)

// renderFormat interprets plan.Output's FormatFirst/FormatMiddle/FormatLast
// strings (spec §6's FORMAT DSL) against each matching line. FormatFirst
// applies to the first matching line rendered for a unit, FormatLast to the
// final one, FormatMiddle to everything in between — the common pattern
// for emitting a JSON-array-like wrapper via FormatOpen/FormatClose.
func (o *Writer) renderFormat(res *search.Result) {
	matches := make([]search.Line, 0, len(res.Lines))
	for _, ln := range res.Lines {
		if ln.IsMatch {
			matches = append(matches, ln)
		}
	}
	if len(matches) == 0 {
		return
	}

	if o.plan.Output.FormatOpen != "" {
		o.w.WriteString(o.plan.Output.FormatOpen)
	}

	for i, ln := range matches {
		tmpl := o.plan.Output.FormatMiddle
		if i == 0 && o.plan.Output.FormatFirst != "" {
			tmpl = o.plan.Output.FormatFirst
		}
		if i == len(matches)-1 && o.plan.Output.FormatLast != "" {
			tmpl = o.plan.Output.FormatLast
		}
		o.w.WriteString(expandFormat(tmpl, res.PartName, ln))
		o.anyPrinted = true
	}

	if o.plan.Output.FormatClose != "" {
		o.w.WriteString(o.plan.Output.FormatClose)
	}
}

// expandFormat substitutes the %-directives spec §6 defines:
//
//	%p  partname (file or archive:entry path)
//	%f  base filename only
//	%z  archive/decompression part suffix, empty for plain files
//	%n  1-based line number
//	%k  1-based column of the first match on the line
//	%b  byte offset of the first match
//	%O  the whole line's text
//	%m  the first matched substring's text
//	%~  a literal newline
//	%%  a literal percent sign
func expandFormat(tmpl, partName string, ln search.Line) string {
	var b strings.Builder
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i == len(runes)-1 {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'p':
			b.WriteString(partName)
		case 'f':
			b.WriteString(baseName(partName))
		case 'z':
			b.WriteString(partSuffix(partName))
		case 'n':
			b.WriteString(strconv.Itoa(ln.Number))
		case 'k':
			if len(ln.Matches) > 0 {
				b.WriteString(strconv.Itoa(ln.Matches[0].Start + 1))
			} else {
				b.WriteString("0")
			}
		case 'b':
			if len(ln.Matches) > 0 {
				b.WriteString(strconv.Itoa(ln.Offset + ln.Matches[0].Start))
			} else {
				b.WriteString(strconv.Itoa(ln.Offset))
			}
		case 'O':
			b.Write(ln.Text)
		case 'm':
			if len(ln.Matches) > 0 {
				s := ln.Matches[0]
				b.Write(ln.Text[s.Start:s.End])
			}
		case '~':
			b.WriteByte('\n')
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}

func baseName(partName string) string {
	idx := strings.LastIndexAny(partName, "/\\:")
	if idx < 0 {
		return partName
	}
	return partName[idx+1:]
}

// partSuffix returns everything after the first ':' join inserted by
// decomp.JoinPartName, i.e. the archive-member path, or "" for a plain
// file with no archive part.
func partSuffix(partName string) string {
	idx := strings.Index(partName, ":")
	if idx < 0 {
		return ""
	}
	return partName[idx+1:]
}
