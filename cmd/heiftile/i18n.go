// Package main provides localization for the heiftile CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定ファイル",
		"Decoding":      "デコード",
		"Output":        "出力",
		"Logging":       "ログ",

		// Commands
		"Decode HEIF/HEIC compressed image tiles":             "HEIF/HEICの圧縮画像タイルをデコード",
		"Decode tiles to PNG or TIFF images":                  "タイルをPNGまたはTIFF画像にデコード",
		"Show the units and stream parameters of tiles":       "タイルのユニットとストリームパラメータを表示",
		"List decoder backends and their priority per format": "デコーダーバックエンドとフォーマットごとの優先度を一覧表示",
		"Show version information":                            "バージョン情報を表示",
		"heiftile version %s":                                 "heiftile バージョン %s",

		// Flags
		"YAML configuration file":                            "YAML設定ファイル",
		"Decoder backend (auto, nvdec, ffmpeg)":              "デコーダーバックエンド（auto, nvdec, ffmpeg）",
		"Fail on recoverable bitstream errors":               "回復可能なビットストリームエラーでも失敗させる",
		"CUDA device ordinal":                                "CUDAデバイス番号",
		"Path to the ffmpeg binary":                          "ffmpeg実行ファイルのパス",
		"Log level (debug, info, warn, error)":               "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                            "全てのログ出力を抑制",
		"Output directory":                                   "出力ディレクトリ",
		"Output image format (png, tiff)":                    "出力画像形式（png, tiff）",
		"Write a plane preview sheet for each tile":          "タイルごとにプレーンのプレビューを書き出す",
		"Decode without writing any file":                    "ファイルを書き出さずにデコードのみ行う",
		"Do not write report.json":                           "report.jsonを書き出さない",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Number of tiles decoded in parallel":                "並列にデコードするタイル数",

		// Runtime messages
		"At least one tile is required": "少なくとも1つのタイルが必要です",
		"Container size":                "コンテナ上のサイズ",
		"Backend":                       "バックエンド",
		"Incomplete access unit":        "不完全なアクセスユニット",
		"Name":                          "名前",

		// Summary content
		"Decode Summary": "デコードサマリー",
		"Settings":       "設定",
		"Item":           "項目",
		"Value":          "値",
		"Strict":         "厳格モード",
		"Output Format":  "出力形式",
		"Workers":        "ワーカー数",
		"Tiles":          "タイル",
		"Total":          "合計",
		"Failed":         "失敗",
		"Size":           "サイズ",
		"Format":         "形式",
		"Time":           "時間",
		"Result":         "結果",
		"Error":          "エラー",
		"Yes":            "はい",
		"No":             "いいえ",
		"Generated":      "生成日時",
	})
}
