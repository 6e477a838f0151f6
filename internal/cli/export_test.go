package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// RunSentence exports runSentence for testing.
var RunSentence = runSentence

// ParseSentenceOptions exports parseSentenceOptions for testing.
var ParseSentenceOptions = parseSentenceOptions

// RunFile exports runFile for testing.
var RunFile = runFile

// ParseFileOptions exports parseFileOptions for testing.
var ParseFileOptions = parseFileOptions

// ResolveSpec exports resolveSpec for testing.
var ResolveSpec = resolveSpec

// DeriveOutputPath exports deriveOutputPath for testing.
var DeriveOutputPath = deriveOutputPath
