package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Decoding %d tiles with %d workers":            "%d 個のタイルを %d ワーカーでデコード中",
		"Decoding %s (%s, %d bytes)":                   "%s をデコード中 (%s, %d バイト)",
		"Decoded %s: %dx%d %s %d-bit with %s in %d ms": "%s をデコードしました: %dx%d %s %d ビット (%s, %d ms)",
		"Output saved to %s":                           "出力を %s に保存しました",
		"All %d tiles decoded":                         "%d 個のタイルを全てデコードしました",
		"Report saved to %s":                           "レポートを %s に保存しました",
		"Summary saved to %s":                          "サマリーを %s に保存しました",
		"Interrupted, shutting down...":                "中断されました。シャットダウン中...",

		// Stages (debug)
		"Loaded %s tile %s: %d bytes": "%s タイル %s を読み込みました: %d バイト",
		"Decoded %s with %s in %s":    "%s を %s で %s でデコードしました",
		"Preview rendered: %dx%d":     "プレビューを描画しました: %dx%d",
		"Saved %s":                    "%s を保存しました",

		// Backends
		"Using decoder %s for %s":   "%[2]s に %[1]s デコーダーを使用します",
		"Hardware probe failed: %v": "ハードウェアの確認に失敗しました: %v",
		"FFmpeg unavailable: %v":    "FFmpeg を利用できません: %v",
		"Decoded %dx%d %s tile":     "%dx%d %s タイルをデコードしました",

		// Hardware session
		"Video input: %s":                 "ビデオ入力: %s",
		"Decoding params: %s":             "デコードパラメータ: %s",
		"Sequence changed, renegotiating": "シーケンスが変更されたため再設定します",
		"AV1 operating points: %d, selected %d (IDC %#x, all layers %t)": "AV1 オペレーティングポイント: %d, 選択 %d (IDC %#x, 全レイヤー %t)",

		// Warnings
		"Decode error occurred for picture %d (%s)": "ピクチャ %d でデコードエラーが発生しました (%s)",
		"FFmpeg reported: %s":                       "FFmpeg の報告: %s",
		"%d of %d tiles failed":                     "%d / %d 個のタイルが失敗しました",
		"Failed to close decoder: %s":               "デコーダーのクローズに失敗しました: %s",
		"Failed to close hardware session: %v":      "ハードウェアセッションのクローズに失敗しました: %v",

		// Errors
		"Failed to load tile: %s":      "タイルの読み込みに失敗しました: %s",
		"Failed to decode %s: %s":      "%s のデコードに失敗しました: %s",
		"Failed to render preview: %s": "プレビューの描画に失敗しました: %s",
		"Failed to save output: %s":    "出力の保存に失敗しました: %s",
		"Failed to write report: %s":   "レポートの書き込みに失敗しました: %s",
		"Failed to write summary: %s":  "サマリーの書き込みに失敗しました: %s",
	})
}
