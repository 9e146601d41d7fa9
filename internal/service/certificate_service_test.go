package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skillbridge_backend/internal/model"
	"skillbridge_backend/internal/testutil"
	"skillbridge_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_StoresArtifactsAndRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.certificates.newSuffix = sequence("1A2B3C4D")

	user := testutil.CreateUser(t, env.db, "priya", "Priya Sharma")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")

	cert, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, "SB-2025-1A2B3C4D", cert.CertificateID)
	assert.Equal(t, "https://skillbridge.edu/verify/SB-2025-1A2B3C4D", cert.VerificationURL)
	assert.Equal(t, "qr/qr_SB-2025-1A2B3C4D.png", cert.QRCodePath)
	assert.Equal(t, "certificates/cert_SB-2025-1A2B3C4D.png", cert.ImagePath)
	assert.True(t, cert.IssuedAt.Equal(fixedNow))

	require.Len(t, env.renderer.contents, 1)
	drawn := env.renderer.contents[0]
	assert.Equal(t, "Priya Sharma", drawn.StudentName)
	assert.Equal(t, "Digital Literacy Basics", drawn.CourseName)
	assert.Equal(t, "SkillBridge", drawn.Issuer)
	assert.Equal(t, []byte("qr:"+cert.VerificationURL), drawn.QR)
	assert.Equal(t, []string{cert.VerificationURL}, env.renderer.qrURLs)

	img, err := env.certificates.FetchArtifact(ctx, cert.CertificateID, ArtifactCertificate)
	require.NoError(t, err)
	assert.Equal(t, []byte("cert:SB-2025-1A2B3C4D"), img)

	qr, err := env.certificates.FetchArtifact(ctx, cert.CertificateID, ArtifactQR)
	require.NoError(t, err)
	assert.Equal(t, []byte("qr:"+cert.VerificationURL), qr)
}

func TestIssue_TwiceReturnsSameID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "ravi", "Ravi")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")

	first, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.NoError(t, err)

	_, err = env.certificates.Issue(ctx, user.ID, course.ID)
	require.ErrorIs(t, err, util.ErrAlreadyIssued)

	var issued *util.AlreadyIssuedError
	require.True(t, errors.As(err, &issued))
	assert.Equal(t, first.CertificateID, issued.CertificateID)

	var count int64
	require.NoError(t, env.db.Model(&model.Certificate{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Len(t, env.renderer.contents, 1, "second call must not render")
}

func TestIssue_RegeneratesOnIDCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.certificates.newSuffix = sequence("AAAAAAAA", "AAAAAAAA", "BBBBBBBB")

	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	a := testutil.CreateUser(t, env.db, "a", "A")
	b := testutil.CreateUser(t, env.db, "b", "B")

	first, err := env.certificates.Issue(ctx, a.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "SB-2025-AAAAAAAA", first.CertificateID)

	second, err := env.certificates.Issue(ctx, b.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "SB-2025-BBBBBBBB", second.CertificateID)
}

func TestIssue_ConcurrentWinnerReportedAsAlreadyIssued(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "sam", "Sam")
	course := testutil.CourseByName(t, env.db, "Data Entry & Analysis")

	// 渲染期间另一请求抢先写入
	env.renderer.onRender = func() {
		env.renderer.onRender = nil
		require.NoError(t, env.db.Create(&model.Certificate{
			UserID:        user.ID,
			CourseID:      course.ID,
			CertificateID: "SB-2025-WINNER01",
			IssuedAt:      fixedNow,
		}).Error)
	}

	_, err := env.certificates.Issue(ctx, user.ID, course.ID)
	var issued *util.AlreadyIssuedError
	require.True(t, errors.As(err, &issued))
	assert.Equal(t, "SB-2025-WINNER01", issued.CertificateID)
}

func TestIssue_ParallelCallersShareOneCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "meera", "Meera")
	course := testutil.CourseByName(t, env.db, "Online Business Skills")

	const callers = 5
	certs := make([]*model.Certificate, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			certs[i], errs[i] = env.certificates.Issue(ctx, user.ID, course.ID)
		}(i)
	}
	wg.Wait()

	var winner *model.Certificate
	for i, err := range errs {
		if err == nil {
			require.Nil(t, winner, "more than one caller issued a certificate")
			winner = certs[i]
		}
	}
	require.NotNil(t, winner)

	for _, err := range errs {
		if err == nil {
			continue
		}
		var issued *util.AlreadyIssuedError
		require.True(t, errors.As(err, &issued), "unexpected error: %v", err)
		assert.Equal(t, winner.CertificateID, issued.CertificateID)
	}

	var stored []model.Certificate
	require.NoError(t, env.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, winner.CertificateID, stored[0].CertificateID)
}

func TestIssue_UnknownUserOrCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")

	_, err := env.certificates.Issue(ctx, 9999, course.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.certificates.Issue(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrNotFound)

	assert.Empty(t, env.renderer.contents)
}

func TestIssue_StorageFailureAbortsWithoutRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.certificates.Storage = &StorageService{Provider: failingProvider{}}

	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")

	_, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.ErrorIs(t, err, util.ErrStorage)

	var count int64
	require.NoError(t, env.db.Model(&model.Certificate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIssue_QRFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.renderer.qrErr = errors.New("data too long")

	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")

	cert, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Empty(t, cert.QRCodePath)
	assert.Nil(t, env.renderer.contents[0].QR)

	_, err = env.certificates.FetchArtifact(ctx, cert.CertificateID, ArtifactQR)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "priya", "Priya Sharma")
	course := testutil.CourseByName(t, env.db, "Digital Literacy Basics")
	cert, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		res, err := env.certificates.Verify(ctx, cert.CertificateID)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, "Priya Sharma", res.StudentName)
		assert.Equal(t, "Digital Literacy Basics", res.CourseName)
		assert.Equal(t, cert.VerificationURL, res.VerificationURL)
		require.NotNil(t, res.IssuedAt)
		assert.True(t, res.IssuedAt.Equal(fixedNow))
	})

	for _, id := range []string{
		"SB-2025-00000000",       // well formed, never issued
		"sb-2025-1a2b3c4d",       // lowercase
		"SB-25-1A2B3C4D",         // short year
		"SB-2025-1A2B3C4D' OR 1", // injection attempt
		"",
	} {
		t.Run("invalid "+id, func(t *testing.T) {
			res, err := env.certificates.Verify(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, &VerificationResult{Valid: false}, res)
		})
	}
}

func TestListForUser_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u", "U")

	empty, err := env.certificates.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	older := testutil.CourseByName(t, env.db, "Computer Fundamentals")
	newer := testutil.CourseByName(t, env.db, "Internet & Email Skills")

	_, err = env.certificates.Issue(ctx, user.ID, older.ID)
	require.NoError(t, err)
	env.certificates.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = env.certificates.Issue(ctx, user.ID, newer.ID)
	require.NoError(t, err)

	list, err := env.certificates.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Internet & Email Skills", list[0].CourseName)
	assert.Equal(t, "Computer Fundamentals", list[1].CourseName)
}

func TestFetchArtifact_Missing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.certificates.FetchArtifact(ctx, "SB-2025-DEADBEEF", ArtifactCertificate)
	assert.ErrorIs(t, err, util.ErrNotFound)

	user := testutil.CreateUser(t, env.db, "u", "U")
	course := testutil.CourseByName(t, env.db, "Computer Fundamentals")
	cert, err := env.certificates.Issue(ctx, user.ID, course.ID)
	require.NoError(t, err)

	env.store.Remove(cert.ImagePath)
	_, err = env.certificates.FetchArtifact(ctx, cert.CertificateID, ArtifactCertificate)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
