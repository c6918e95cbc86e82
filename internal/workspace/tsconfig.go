package workspace

// CompilerOptions are the user-tunable parts of the generated tsconfig.json.
type CompilerOptions struct {
	Target           string
	Module           string
	ModuleResolution string
	JSX              string
	Strict           bool
	Lib              []string
}

// DefaultCompilerOptions returns the options used when nothing is configured.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		Target:           "ES2022",
		Module:           "ESNext",
		ModuleResolution: "Bundler",
		JSX:              "preserve",
		Strict:           true,
		Lib:              []string{"ES2022", "DOM"},
	}
}

type tsConfig struct {
	CompilerOptions tsCompilerOptions `json:"compilerOptions"`
	Files           []string          `json:"files"`
}

type tsCompilerOptions struct {
	Target                           string   `json:"target"`
	Module                           string   `json:"module"`
	ModuleResolution                 string   `json:"moduleResolution"`
	JSX                              string   `json:"jsx,omitempty"`
	Lib                              []string `json:"lib,omitempty"`
	Strict                           bool     `json:"strict"`
	NoEmit                           bool     `json:"noEmit"`
	SkipLibCheck                     bool     `json:"skipLibCheck"`
	AllowJs                          bool     `json:"allowJs"`
	ResolveJSONModule                bool     `json:"resolveJsonModule"`
	EsModuleInterop                  bool     `json:"esModuleInterop"`
	AllowImportingTsExtensions       bool     `json:"allowImportingTsExtensions"`
	ForceConsistentCasingInFileNames bool     `json:"forceConsistentCasingInFileNames"`
	NoErrorTruncation                bool     `json:"noErrorTruncation"`
	Types                            []string `json:"types"`
}

// newTSConfig builds a configuration that only knows about the workspace:
// no "extends", no ambient @types packages, an explicit file list.
func newTSConfig(opts CompilerOptions, checked []string) tsConfig {
	defaults := DefaultCompilerOptions()
	if opts.Target == "" {
		opts.Target = defaults.Target
	}
	if opts.Module == "" {
		opts.Module = defaults.Module
	}
	if opts.ModuleResolution == "" {
		opts.ModuleResolution = defaults.ModuleResolution
	}

	files := make([]string, 0, len(checked))
	for _, p := range checked {
		files = append(files, SourceDirName+"/"+p)
	}

	return tsConfig{
		CompilerOptions: tsCompilerOptions{
			Target:                           opts.Target,
			Module:                           opts.Module,
			ModuleResolution:                 opts.ModuleResolution,
			JSX:                              opts.JSX,
			Lib:                              opts.Lib,
			Strict:                           opts.Strict,
			NoEmit:                           true,
			SkipLibCheck:                     true,
			AllowJs:                          true,
			ResolveJSONModule:                true,
			EsModuleInterop:                  true,
			AllowImportingTsExtensions:       true,
			ForceConsistentCasingInFileNames: true,
			NoErrorTruncation:                true,
			Types:                            []string{},
		},
		Files: files,
	}
}
