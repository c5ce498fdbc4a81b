/*
Package preview is a read-only facade onto a task's working folder: List
walks it (depth ≤ 6, ≤ 300 regular files, symlinks skipped at every level)
and Read returns a single file's content (≤ 256 KiB, truncated flag set
beyond that).

Read defends against path escape by joining a caller-supplied name against
a trust root and re-verifying the result: relative-path syntax is rejected
outright (absolute, backslash, null byte, any ".." segment), then after
resolving symlinks on both the working folder and the target file, the
canonical target must still sit under the canonical root. A symlink
planted inside the working folder that points outside it is rejected even
though the unresolved path looked fine.

Content is returned as utf8 when the inferred MIME type is not an image
and the bytes are valid UTF-8 with no NUL byte; otherwise it is
base64-encoded.
*/
package preview
