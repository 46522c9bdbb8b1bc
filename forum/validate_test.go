package forum

import (
	"strings"
	"testing"
	"time"

	"hibiki/errs"
	"hibiki/models"
)

func TestCreateThreadOnUnknownBoard(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.CreateThread("z", payload("hello"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestReplyToUnknownThread(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b")

	_, err := env.svc.CreateReply("b", 42, payload("hello"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestReplyToReplyIsRejected(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b")

	thread := env.mustThread(t, "b", payload("root"), "1.2.3.4")
	reply := env.mustReply(t, "b", thread.NumberOnBoard, payload("child"), "1.2.3.4")

	_, err := env.svc.CreateReply("b", reply.NumberOnBoard, payload("grandchild"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not-found error when replying to a reply, got %v", err)
	}
}

func TestPostingDisabled(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.EnablePosting = false })

	_, err := env.svc.CreateThread("b", payload("hello"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotAllowed) {
		t.Fatalf("expected not-allowed error, got %v", err)
	}
}

func TestThreadDelayWindow(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.DelayBetweenThreads = 60000 })

	env.mustThread(t, "b", payload("first"), "1.2.3.4")

	env.clock.Advance(30 * time.Second)
	_, err := env.svc.CreateThread("b", payload("too soon"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotAllowed) {
		t.Fatalf("expected rate-limit rejection at 30s, got %v", err)
	}

	// A different IP is not affected by the first poster's window
	if _, err := env.svc.CreateThread("b", payload("other poster"), "5.6.7.8"); err != nil {
		t.Fatalf("unrelated IP should not be rate limited: %v", err)
	}

	env.clock.Advance(31 * time.Second)
	if _, err := env.svc.CreateThread("b", payload("late enough"), "1.2.3.4"); err != nil {
		t.Fatalf("expected thread to pass at 61s, got %v", err)
	}
}

func TestReplyDelayWindow(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.DelayBetweenReplies = 10000 })

	thread := env.mustThread(t, "b", payload("root"), "1.2.3.4")

	env.clock.Advance(5 * time.Second)
	_, err := env.svc.CreateReply("b", thread.NumberOnBoard, payload("too soon"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotAllowed) {
		t.Fatalf("expected rate-limit rejection, got %v", err)
	}

	env.clock.Advance(6 * time.Second)
	env.mustReply(t, "b", thread.NumberOnBoard, payload("fine now"), "1.2.3.4")
}

func TestBoardFull(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.MaxThreadCount = 1 })

	thread := env.mustThread(t, "b", payload("only thread"), "1.2.3.4")

	_, err := env.svc.CreateThread("b", payload("one too many"), "5.6.7.8")
	if !errs.IsKind(err, errs.KindNotAllowed) {
		t.Fatalf("expected not-allowed error on full board, got %v", err)
	}

	// Replies are not capped by the thread count
	env.mustReply(t, "b", thread.NumberOnBoard, payload("still fine"), "5.6.7.8")
}

func TestZeroThreadCountKeepsBoardFull(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.MaxThreadCount = 0 })

	_, err := env.svc.CreateThread("b", payload("no room"), "1.2.3.4")
	if !errs.IsKind(err, errs.KindNotAllowed) {
		t.Fatalf("expected not-allowed error on zero-capacity board, got %v", err)
	}
}

func TestStrictAnonymousPosting(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.StrictAnonymousPosting = true })

	p := payload("hello")
	p.Name = "Namefag"
	_, err := env.svc.CreateThread("b", p, "1.2.3.4")
	if !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected bad-request error for named post, got %v", err)
	}

	env.mustThread(t, "b", payload("nameless"), "1.2.3.4")
}

func TestCommentTooLong(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.MaxCommentLength = 10 })

	_, err := env.svc.CreateThread("b", payload(strings.Repeat("a", 11)), "1.2.3.4")
	if !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected bad-request error for long comment, got %v", err)
	}

	env.mustThread(t, "b", payload(strings.Repeat("a", 10)), "1.2.3.4")

	// The limit counts characters, not bytes
	env.mustThread(t, "b", payload(strings.Repeat("ы", 10)), "5.6.7.8")
	if _, err := env.svc.CreateThread("b", payload(strings.Repeat("ы", 11)), "5.6.7.8"); !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected bad-request error for long multibyte comment, got %v", err)
	}
}

func TestFileRules(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "nofiles", func(s *models.BoardSettings) { s.EnableFilesOnThread = false })
	env.makeBoard(t, "strict", func(s *models.BoardSettings) { s.StrictFileOnThread = true })
	env.makeBoard(t, "small", func(s *models.BoardSettings) { s.MaxFileSize = 100 })

	p := payload("with file")
	p.File = textUpload("a.png", 50)
	if _, err := env.svc.CreateThread("nofiles", p, "1.2.3.4"); !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected rejection of file on file-less board, got %v", err)
	}

	if _, err := env.svc.CreateThread("strict", payload("no file"), "1.2.3.4"); !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected rejection of missing file on strict board, got %v", err)
	}

	big := payload("big file")
	big.File = textUpload("big.png", 101)
	if _, err := env.svc.CreateThread("small", big, "1.2.3.4"); !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected rejection of oversized file, got %v", err)
	}

	ok := payload("ok file")
	ok.File = textUpload("ok.png", 100)
	env.mustThread(t, "small", ok, "1.2.3.4")
}

func TestZeroMaxFileSizeRejectsAnyFile(t *testing.T) {
	env := setupEnv(t)
	env.makeBoard(t, "b", func(s *models.BoardSettings) { s.MaxFileSize = 0 })

	p := payload("tiny file")
	p.File = textUpload("a.png", 1)
	if _, err := env.svc.CreateThread("b", p, "1.2.3.4"); !errs.IsKind(err, errs.KindBadRequest) {
		t.Fatalf("expected bad-request error with a zero size cap, got %v", err)
	}

	// No file attached is still fine
	env.mustThread(t, "b", payload("just text"), "1.2.3.4")
}

func TestRejectedPostLeavesNoTrace(t *testing.T) {
	env := setupEnv(t)
	board := env.makeBoard(t, "b", func(s *models.BoardSettings) { s.MaxCommentLength = 5 })

	if _, err := env.svc.CreateThread("b", payload("way too long"), "1.2.3.4"); err == nil {
		t.Fatal("expected rejection")
	}

	fresh, err := env.boards.ByID(board.ID)
	if err != nil {
		t.Fatalf("reload board: %v", err)
	}
	if fresh.LastPostNumber != 0 {
		t.Errorf("board counter moved on rejected post: %d", fresh.LastPostNumber)
	}
	count, err := env.comments.CommentsCount(board.ID)
	if err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected post left %d comment rows", count)
	}
	if len(env.files.saved) != 0 {
		t.Errorf("rejected post saved %d files", len(env.files.saved))
	}
}
