// Package artisign signs release artifacts through a remote HTTP signing
// service, reusing signatures from a previous build when the unsigned
// content has not changed.
//
// # Basic Usage
//
// Create a client and sign a set of files:
//
//	client, err := artisign.NewClient(
//	    artisign.WithEndpoint("https://signer.example.com/sign"),
//	    artisign.WithSuffixes(
//	        artisign.Suffix{Extension: "jar"},
//	        artisign.Suffix{Classifier: "sources", Extension: "jar"},
//	    ),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := client.Run(ctx, artisign.RunConfig{OutputDir: "build/signed"}, files)
//
// # Reuse
//
// When RunConfig.AlternateSourceDir is set, each input is compared with the
// files of a previous build that share its base name ("mylib" for
// "mylib-1.2.3-sources.jar") and suffix ("-sources.jar"). If one has the
// same checksum and its signed counterpart exists in
// RunConfig.AlternateTargetDir, that signed file is copied instead of
// calling the signing service.
//
// Alternates that match by name but differ in content are reported as an
// *InconsistencyError when RunConfig.FailOnInconsistency is set, and
// logged as a warning otherwise.
//
// # Skipping
//
// WithSkipSigning(true) copies every input to the output directory as is,
// which keeps local builds working without access to the signing service.
package artisign
