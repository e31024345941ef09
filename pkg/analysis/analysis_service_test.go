package analysis

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSample = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type fakeClassifier struct {
	result domain.ClassificationResult
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, []byte, string) (domain.ClassificationResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (f *fakeStorage) UploadFile(context.Context, string, *multipart.FileHeader, string, ...string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeStorage) UploadBytes(_ context.Context, filename string, data []byte, _ string, folder string) (string, error) {
	key := folder + "/" + filename
	f.objects[key] = data
	return key, nil
}

func (f *fakeStorage) GetPublicLinkKey(key string) string { return "https://cdn.example.com/" + key }

func (f *fakeStorage) DeleteFile(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func beanResult(kind int) domain.ClassificationResult {
	return domain.ClassificationResult{
		Species: "carioca",
		Classification: domain.Classification{
			Summary: domain.ClassificationSummary{Type: kind, DefectPercentage: 2.5, Explanation: "poucos defeitos"},
			Defects: entities.DefectBreakdown{
				Grave: entities.GraveDefects{Moldy: 0.5},
				Light: entities.LightDefects{Broken: 2},
			},
		},
		Colorimetry: entities.Colorimetry{AverageL: 52, StdDev: 3.1, Classification: "light", FinalScore: 9},
	}
}

func TestClassifyPersistsSuccessfulAnalysis(t *testing.T) {
	db := testutil.NewTestDB(t)
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	store := newFakeStorage()
	svc := NewAnalysisService(NewAnalysisRepository(db), &fakeClassifier{result: beanResult(1)}, store)

	analysis, err := svc.Classify(context.Background(), ana.ID.String(), domain.ClassifyRequest{
		Image: fileHeader(t, "amostra.png", "image/png", pngSample),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, analysis.Type)
	assert.Equal(t, "image/png", analysis.MimeType)
	assert.Contains(t, analysis.ImageURL, "https://cdn.example.com/samples/")
	assert.Len(t, store.objects, 1)

	stored, err := svc.GetByID(context.Background(), analysis.ID.String(), ana.ID.String(), ana.Role)
	require.NoError(t, err)
	assert.Equal(t, "light", stored.Colorimetry.Data().Classification)
	assert.Equal(t, 0.5, stored.Defects.Data().Grave.Moldy)
}

func TestClassifyRejectsNonBeanImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	store := newFakeStorage()
	svc := NewAnalysisService(NewAnalysisRepository(db), &fakeClassifier{result: beanResult(domain.NotABeanType)}, store)

	_, err := svc.Classify(context.Background(), ana.ID.String(), domain.ClassifyRequest{
		Image: fileHeader(t, "gato.png", "image/png", pngSample),
	})
	assert.ErrorIs(t, err, domain.ErrNotABeanSample)
	assert.True(t, domain.IsKind(err, domain.KindRejectedContent))
	assert.Empty(t, store.objects)

	var count int64
	require.NoError(t, db.Model(&entities.Analysis{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestClassifyProviderFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	store := newFakeStorage()
	svc := NewAnalysisService(NewAnalysisRepository(db), &fakeClassifier{err: errors.New("503 overloaded")}, store)

	_, err := svc.Classify(context.Background(), ana.ID.String(), domain.ClassifyRequest{
		Image: fileHeader(t, "amostra.png", "image/png", pngSample),
	})
	assert.True(t, domain.IsKind(err, domain.KindExternalService))
	assert.Empty(t, store.objects)

	var count int64
	require.NoError(t, db.Model(&entities.Analysis{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestClassifyRejectsNonImages(t *testing.T) {
	db := testutil.NewTestDB(t)
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	classifier := &fakeClassifier{result: beanResult(1)}
	svc := NewAnalysisService(NewAnalysisRepository(db), classifier, newFakeStorage())

	_, err := svc.Classify(context.Background(), ana.ID.String(), domain.ClassifyRequest{
		Image: fileHeader(t, "notas.txt", "text/plain", []byte("isto não é uma imagem")),
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Zero(t, classifier.calls)
}

func TestGetByIDMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAnalysisService(NewAnalysisRepository(db), &fakeClassifier{}, nil)

	_, err := svc.GetByID(context.Background(), "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "", domain.RoleRepresentative)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestGetByIDVisibility(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	bruno := testutil.CreateUser(t, db, "bruno", domain.RoleProducer)
	rita := testutil.CreateUser(t, db, "rita", domain.RoleRepresentative)
	svc := NewAnalysisService(NewAnalysisRepository(db), &fakeClassifier{result: beanResult(2)}, newFakeStorage())

	analysis, err := svc.Classify(ctx, ana.ID.String(), domain.ClassifyRequest{
		Image: fileHeader(t, "amostra.png", "image/png", pngSample),
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, analysis.ID.String(), bruno.ID.String(), bruno.Role)
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)

	got, err := svc.GetByID(ctx, analysis.ID.String(), rita.ID.String(), rita.Role)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.UserID)
}
