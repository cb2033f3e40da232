package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

// brineModulePath is what generated files import. Packages inside the BRINE
// module itself generate without the import or prefix.
const brineModulePath = "github.com/brinehq/brine-go"

type packageInfo struct {
	Dir     string
	Name    string
	Structs []structInfo
}

type structInfo struct {
	Name   string
	Fields []fieldInfo
}

type fieldInfo struct {
	Name     string
	Key      string
	Required bool

	// Raw shape from the AST pass.
	Type      string
	Ident     string
	IsPointer bool
	IsSlice   bool
	SliceElem string

	// Resolved before templating.
	Category       string // bool, int, uint, float, string, bytes, struct, ptrstruct, slice
	GoType         string
	ElemCategory   string
	ElemType       string
	EncodeExpr     string
	ElemEncodeExpr string
}

//go:embed templates/brine_gen.gotemplate
var brineGenTemplate string

func findModuleRoot(start string) (string, string, error) {
	dir := start
	for {
		modPath := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(modPath)
		if err == nil {
			modulePath, err := parseModulePath(data)
			if err != nil {
				return "", "", err
			}
			return dir, modulePath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("go.mod not found starting from %s", start)
		}
		dir = parent
	}
}

func parseModulePath(data []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "module ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], nil
			}
			return "", fmt.Errorf("module declaration malformed")
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in go.mod")
}

func collectPackageInfos(root string) ([]*packageInfo, error) {
	dirs := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		if strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		dirs[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	var infos []*packageInfo
	for dir := range dirs {
		pkgInfos, err := parsePackageDir(dir)
		if err != nil {
			return nil, err
		}
		infos = append(infos, pkgInfos...)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Dir == infos[j].Dir {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Dir < infos[j].Dir
	})
	return infos, nil
}

func parsePackageDir(dir string) ([]*packageInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, err
	}

	var infos []*packageInfo
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			if isSkippablePackageErrors(pkg.Errors) {
				log.Printf("brinegen: skipping %s (no buildable Go files for current tags)", dir)
				continue
			}
			return nil, fmt.Errorf("package load error in %s: %v", dir, pkg.Errors[0])
		}
		if pkg.Name == "" {
			continue
		}
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		info := &packageInfo{Dir: dir, Name: pkg.Name}
		methods := make(map[string]map[string]bool)
		var candidates []structInfo
		for _, file := range pkg.Syntax {
			if pkg.Fset != nil {
				filename := pkg.Fset.Position(file.Pos()).Filename
				if filename != "" {
					base := filepath.Base(filename)
					switch {
					case strings.HasSuffix(base, "_test.go"):
						continue
					case strings.HasSuffix(base, "brine_gen.go"):
						continue
					}
				}
			}
			ast.Inspect(file, func(n ast.Node) bool {
				switch t := n.(type) {
				case *ast.FuncDecl:
					if t.Recv != nil && len(t.Recv.List) == 1 {
						if name, _ := fieldIdent(t.Recv.List[0].Type); name != "" {
							if methods[name] == nil {
								methods[name] = make(map[string]bool)
							}
							methods[name][t.Name.Name] = true
						}
					}
					return false
				case *ast.TypeSpec:
					st, ok := t.Type.(*ast.StructType)
					if !ok {
						return false
					}
					if t.TypeParams != nil && len(t.TypeParams.List) > 0 {
						log.Printf("brinegen: skipping %s in %s (generic structs not supported)", t.Name.Name, dir)
						return false
					}
					fields, err := collectTaggedFields(pkg.Fset, st)
					if err != nil {
						log.Printf("brinegen: skipping %s in %s (field parse error: %v)", t.Name.Name, dir, err)
						return false
					}
					if len(fields) == 0 {
						return false
					}
					candidates = append(candidates, structInfo{Name: t.Name.Name, Fields: fields})
					return false
				}
				return true
			})
		}

		for _, candidate := range candidates {
			if ms := methods[candidate.Name]; ms != nil && (ms["MarshalBrine"] || ms["UnmarshalBrine"]) {
				log.Printf("brinegen: skipping %s in %s (marshal methods already defined)", candidate.Name, dir)
				continue
			}
			info.Structs = append(info.Structs, candidate)
		}

		sort.Slice(info.Structs, func(i, j int) bool {
			return info.Structs[i].Name < info.Structs[j].Name
		})
		applyCategories(info)
		infos = append(infos, info)
	}

	return infos, nil
}

func isSkippablePackageErrors(errs []packages.Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		msg := strings.ToLower(err.Msg)
		if strings.Contains(msg, "build constraints exclude all go files") {
			continue
		}
		if strings.Contains(msg, "no go files") {
			continue
		}
		return false
	}
	return true
}

func collectTaggedFields(fset *token.FileSet, st *ast.StructType) ([]fieldInfo, error) {
	var fields []fieldInfo
	for _, field := range st.Fields.List {
		if field.Tag == nil || len(field.Names) == 0 {
			continue
		}
		tagValue, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflect.StructTag(tagValue)
		brineTag := tag.Get("brine")
		if brineTag == "" {
			continue
		}
		parts := strings.Split(brineTag, ",")
		key := parts[0]
		if key == "-" {
			continue
		}
		required := false
		for _, opt := range parts[1:] {
			if opt == "required" {
				required = true
			}
		}
		typ, err := formatNode(fset, field.Type)
		if err != nil {
			return nil, err
		}
		ident, isPtr := fieldIdent(field.Type)
		elemType, isSlice := sliceElemType(fset, field.Type)
		for _, name := range field.Names {
			k := key
			if k == "" {
				k = name.Name
			}
			fields = append(fields, fieldInfo{
				Name:      name.Name,
				Key:       k,
				Required:  required,
				Type:      typ,
				Ident:     ident,
				IsPointer: isPtr,
				IsSlice:   isSlice,
				SliceElem: elemType,
			})
		}
	}
	return fields, nil
}

// applyCategories resolves every field to a template category, dropping
// fields whose types have no record mapping. Structs keep their methods even
// when every field was dropped.
func applyCategories(info *packageInfo) {
	available := make(map[string]struct{}, len(info.Structs))
	for _, st := range info.Structs {
		available[st.Name] = struct{}{}
	}
	for i := range info.Structs {
		st := &info.Structs[i]
		var kept []fieldInfo
		for _, f := range st.Fields {
			resolved, ok := resolveField(f, available)
			if !ok {
				log.Printf("brinegen: skipping field %s.%s in %s (unsupported type %s)", st.Name, f.Name, info.Dir, f.Type)
				continue
			}
			kept = append(kept, resolved)
		}
		st.Fields = kept
	}
}

func resolveField(f fieldInfo, available map[string]struct{}) (fieldInfo, bool) {
	if f.IsSlice {
		cat := scalarCategory(f.SliceElem)
		if cat == "" {
			if _, ok := available[f.SliceElem]; !ok {
				return f, false
			}
			cat = "struct"
		}
		f.Category = "slice"
		f.ElemCategory = cat
		f.ElemType = f.SliceElem
		return f, true
	}
	if f.Type == "[]byte" || f.Type == "[]uint8" {
		f.Category = "bytes"
		f.GoType = f.Type
		return f, true
	}
	if f.IsPointer {
		if _, ok := available[f.Ident]; !ok {
			return f, false
		}
		f.Category = "ptrstruct"
		f.ElemType = f.Ident
		return f, true
	}
	if cat := scalarCategory(f.Type); cat != "" {
		f.Category = cat
		f.GoType = f.Type
		return f, true
	}
	if _, ok := available[f.Ident]; ok && f.Ident == f.Type {
		f.Category = "struct"
		return f, true
	}
	return f, false
}

func scalarCategory(typ string) string {
	switch typ {
	case "bool":
		return "bool"
	case "int", "int8", "int16", "int32", "int64", "rune":
		return "int"
	case "uint", "uint8", "uint16", "uint32", "uint64", "byte":
		return "uint"
	case "float32", "float64":
		return "float"
	case "string":
		return "string"
	default:
		return ""
	}
}

func fieldIdent(expr ast.Expr) (string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, true
		}
	}
	return "", false
}

func sliceElemType(fset *token.FileSet, expr ast.Expr) (string, bool) {
	arr, ok := expr.(*ast.ArrayType)
	if !ok || arr.Len != nil {
		return "", false
	}
	elem, err := formatNode(fset, arr.Elt)
	if err != nil {
		return "", false
	}
	if elem == "byte" || elem == "uint8" {
		return "", false
	}
	return elem, true
}

func formatNode(fset *token.FileSet, node ast.Node) (string, error) {
	var buf bytes.Buffer
	if fset == nil {
		fset = token.NewFileSet()
	}
	if err := format.Node(&buf, fset, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	switch name {
	case "vendor", "node_modules", "testdata":
		return true
	default:
		return false
	}
}

func generatePackage(info *packageInfo, moduleRoot, modulePath string) ([]byte, error) {
	moduleRoot = filepath.Clean(moduleRoot)
	info.Dir = filepath.Clean(info.Dir)

	isRootPackage := info.Dir == moduleRoot && modulePath == brineModulePath
	brinePrefix := "brine."
	var imports []string
	if isRootPackage {
		brinePrefix = ""
	} else {
		imports = append(imports, fmt.Sprintf("%q", brineModulePath))
	}
	if packageNeedsFmt(info) {
		imports = append(imports, `"fmt"`)
	}
	sort.Strings(imports)

	buildExprs(info, brinePrefix)

	var buf bytes.Buffer
	tmpl, err := template.New("brine_gen").Parse(brineGenTemplate)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Execute(&buf, templateData{
		PackageName: info.Name,
		Imports:     imports,
		Structs:     info.Structs,
		P:           brinePrefix,
	}); err != nil {
		return nil, err
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return formatted, nil
}

func packageNeedsFmt(info *packageInfo) bool {
	for _, st := range info.Structs {
		for _, f := range st.Fields {
			if f.Required {
				return true
			}
			switch f.Category {
			case "struct", "ptrstruct":
			default:
				return true
			}
		}
	}
	return false
}

func buildExprs(info *packageInfo, prefix string) {
	for i := range info.Structs {
		for j := range info.Structs[i].Fields {
			f := &info.Structs[i].Fields[j]
			access := "x." + f.Name
			if f.Category == "slice" {
				f.ElemEncodeExpr = scalarEncodeExpr(f.ElemCategory, access+"[i]", prefix)
				continue
			}
			f.EncodeExpr = scalarEncodeExpr(f.Category, access, prefix)
		}
	}
}

func scalarEncodeExpr(cat, access, prefix string) string {
	switch cat {
	case "bool":
		return prefix + "Bool(" + access + ")"
	case "int":
		return prefix + "Int(int64(" + access + "))"
	case "uint":
		return prefix + "Uint(uint64(" + access + "))"
	case "float":
		return prefix + "Float(float64(" + access + "))"
	case "string":
		return prefix + "Text(" + access + ")"
	case "bytes":
		return prefix + "BytesValue(" + access + ")"
	default:
		return ""
	}
}

type templateData struct {
	PackageName string
	Imports     []string
	Structs     []structInfo
	P           string
}

func writeFileIfChanged(filePath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(filePath)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func removeGeneratedFile(dir string) (bool, error) {
	filePath := filepath.Join(dir, "brine_gen.go")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !bytes.HasPrefix(data, []byte("// Code generated by brinegen; DO NOT EDIT.")) {
		return false, nil
	}
	if err := os.Remove(filePath); err != nil {
		return false, err
	}
	return true, nil
}
