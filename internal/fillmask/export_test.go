package fillmask

// Exports for black-box tests.

// ChatCompleter exports chatCompleter.
type ChatCompleter = chatCompleter

// FileDownloader exports fileDownloader.
type FileDownloader = fileDownloader

// WithChatCompleter exports withChatCompleter.
var WithChatCompleter = withChatCompleter

// WithDownloader exports withDownloader.
var WithDownloader = withDownloader

// CleanReply exports cleanReply.
var CleanReply = cleanReply

// DecodePredictions exports decodePredictions.
var DecodePredictions = decodePredictions
