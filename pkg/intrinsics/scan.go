package intrinsics

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/apex/log"
)

var (
	reDefineClass       = regexp.MustCompile(`(\S+)\s+=\s*rb_define_class\("([^"]+)`)
	reDefineModule      = regexp.MustCompile(`(\S+)\s+=\s*rb_define_module\("([^"]+)`)
	reDefineClassUnder  = regexp.MustCompile(`(\S+)\s+=\s*rb_define_class_under\([^,]+,\s*"([^"]+)`)
	reDefineModuleUnder = regexp.MustCompile(`(\S+)\s+=\s*rb_define_module_under\([^,]+,\s*"([^"]+)`)

	reDefineMethod = regexp.MustCompile(`rb_define_method\(([^,]+),\s*"([^,]+)",([^,]+),(.*)`)
	reArgc         = regexp.MustCompile(`^\s*(-?\d+)`)
)

// DefaultSeeds are class handles that are bound outside of the file that
// defines their methods.
var DefaultSeeds = map[string]string{
	"rb_cArray":       "Array",
	"rb_cBasicObject": "BasicObject",
	"rb_cFile":        "File",
	"rb_cFloat":       "Float",
	"rb_cIO":          "IO",
	"rb_cInteger":     "Integer",
	"rb_cModule":      "Module",
	"rb_cNilClass":    "NilClass",
	"rb_cNumeric":     "Numeric",
	"rb_cRange":       "Range",
	"rb_cString":      "String",
	"rb_cThread":      "Thread",
	"rb_eInterrupt":   "Interrupt",
	"rb_eSignal":      "SignalException",
	"rb_mEnumerable":  "Enumerable",
	"rb_mKernel":      "Kernel",
}

// DefaultExclude are the directory names skipped while walking the source tree.
var DefaultExclude = []string{"spec", "ext", "gems"}

// ScanConfig controls which files are visited and how class handles resolve.
type ScanConfig struct {
	Extension string
	Exclude   []string
	Seeds     map[string]string
}

// Scanner extracts method registrations from C source.
type Scanner struct {
	conf     *ScanConfig
	exported map[string]bool
}

// NewScanner returns a scanner that marks methods as exported when their C
// function is in exported.
func NewScanner(conf *ScanConfig, exported map[string]bool) *Scanner {
	if conf == nil {
		conf = &ScanConfig{}
	}
	if conf.Extension == "" {
		conf.Extension = ".c"
	}
	if conf.Exclude == nil {
		conf.Exclude = DefaultExclude
	}
	if conf.Seeds == nil {
		conf.Seeds = DefaultSeeds
	}
	return &Scanner{conf: conf, exported: exported}
}

// SourceFiles returns the root relative paths of the C files under root in
// sorted order.
func (s *Scanner) SourceFiles(root string) ([]string, error) {
	var files []string
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && slices.Contains(s.conf.Exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), s.conf.Extension) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// Scan returns the methods defined under root, grouped by file. Files without
// any registrations are left out.
func (s *Scanner) Scan(root string) (Files, error) {
	files, err := s.SourceFiles(root)
	if err != nil {
		return nil, err
	}
	var defined Files
	for _, file := range files {
		methods, err := s.scanFile(root, file)
		if err != nil {
			log.WithError(err).WithField("file", file).Debug("skipping unreadable source file")
			continue
		}
		if len(methods) > 0 {
			defined = append(defined, FileMethods{File: file, Methods: methods})
		}
	}
	return defined, nil
}

func (s *Scanner) scanFile(root, file string) ([]*Method, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.ScanReader(file, f)
}

// ScanReader extracts the registrations in r, recording file as their origin.
//
// Init functions usually bind a class to a variable and thread that variable
// through the method definitions that follow, so a single forward pass with a
// table of handles is enough.
func (s *Scanner) ScanReader(file string, r io.Reader) ([]*Method, error) {
	klasses := make(map[string]string, len(s.conf.Seeds))
	for handle, name := range s.conf.Seeds {
		klasses[handle] = name
	}

	var methods []*Method

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if handle, name, ok := matchClass(line); ok {
			klasses[handle] = name
		}

		m := reDefineMethod.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// most unresolved handles belong to classes nobody asked for
		klass, ok := klasses[strings.TrimSpace(m[1])]
		if !ok {
			continue
		}
		cname := strings.TrimSpace(m[3])
		method := &Method{
			Exported: s.exported[cname],
			File:     file,
			Klass:    klass,
			RbName:   m[2],
			CName:    cname,
		}
		argc, err := parseArgc(m[4])
		if err != nil {
			method.ArgcExpr = argcExpr(m[4])
			log.WithFields(log.Fields{
				"file":  file,
				"class": klass,
				"c":     cname,
			}).Debugf("recording registration without a calling convention: %v", err)
		}
		method.Argc = argc
		methods = append(methods, method)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	return methods, nil
}

func matchClass(line string) (handle, name string, ok bool) {
	for _, re := range []*regexp.Regexp{reDefineClass, reDefineModule, reDefineClassUnder, reDefineModuleUnder} {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), m[2], true
		}
	}
	return "", "", false
}

// argcExpr trims the closing parenthesis and anything after it.
func argcExpr(s string) string {
	expr, _, _ := strings.Cut(s, ")")
	return strings.TrimSpace(expr)
}

func parseArgc(s string) (int, error) {
	m := reArgc.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("non-literal arity %q", strings.TrimSpace(s))
	}
	return strconv.Atoi(m[1])
}
