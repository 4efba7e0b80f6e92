package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/logger"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/prefs"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- 认证错误 ---
// 这些错误在handler层被转换为用户可见的提示，绝不会创建半个会话。

var (
	ErrUsernameTaken = errors.New("用户名已被占用")
	ErrUserNotFound  = errors.New("用户不存在")
	ErrWrongPassword = errors.New("密码错误")
	ErrCodeInvalid   = errors.New("验证码无效或已过期")
)

const (
	// resetCodeKeyPrefix 是一次性验证码在Redis中的键名前缀
	resetCodeKeyPrefix = "user:reset_code:"
	// resetCodeTTL 是验证码的有效期
	resetCodeTTL = 10 * time.Minute
)

// CodeMailer 是向外投递一次性验证码的最小接口。
// 投递是尽力而为的，调用方只关心成功与否。
type CodeMailer interface {
	SendCode(to, code string) error
}

// Service 承载用户账号的全部业务流程：注册、登录、改密、目标设置、注销。
type Service struct {
	db     *gorm.DB
	prefs  prefs.Store
	rdb    *redis.Client
	mailer CodeMailer
}

// NewService 创建用户服务。mailer可以为nil，此时验证码功能不可用。
func NewService(db *gorm.DB, store prefs.Store, rdb *redis.Client, mailer CodeMailer) *Service {
	return &Service{db: db, prefs: store, rdb: rdb, mailer: mailer}
}

// Register 创建一个新账号。用户名冲突返回ErrUsernameTaken。
func (s *Service) Register(ctx context.Context, username, password, email string) (*User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询用户名失败: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	u := User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	logger.Info("user.registered", "uid", u.ID, "username", u.Username)
	return &u, nil
}

// Login 校验口令并建立会话（写入偏好存储的当前用户）。
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrWrongPassword
	}

	if err := s.prefs.SetCurrentUser(ctx, u.ID); err != nil {
		return nil, err
	}
	logger.Info("user.login", "uid", u.ID)
	return &u, nil
}

// Logout 清除会话。统计管道收到会话事件后会重置传感器基准。
func (s *Service) Logout(ctx context.Context) error {
	return s.prefs.ClearCurrentUser(ctx)
}

// Get 按ID读取用户。
func (s *Service) Get(ctx context.Context, userID uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &u, nil
}

// StepGoalOf 返回指定用户的持久化步数目标，0表示未设置。
func (s *Service) StepGoalOf(ctx context.Context, userID uint) (int, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.StepGoal, nil
}

// UpdateStepGoal 更新用户的步数目标。目标必须是非负整数。
// 同时写入偏好存储，统计管道经由目标变更事件重新组合。
func (s *Service) UpdateStepGoal(ctx context.Context, userID uint, goal int) error {
	if goal < 0 {
		return fmt.Errorf("步数目标不能为负数: %d", goal)
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).
		Update("step_goal", goal).Error; err != nil {
		return fmt.Errorf("更新步数目标失败: %w", err)
	}
	return s.prefs.SetStepGoal(ctx, userID, goal)
}

// ChangePassword 在校验旧密码后更换新密码。
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).
		Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}
	logger.Info("user.password_changed", "uid", userID)
	return nil
}

// DeleteAccount 删除用户及其全部从属数据（活动日志、步数记录、聊天记录）。
// 整个删除在一个事务中完成，之后清除会话。
func (s *Service) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 从属表按user_id级联清理。表名与各模块的迁移保持一致。
		if err := tx.Exec("DELETE FROM activity_logs WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM daily_steps WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM chat_messages WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, userID).Error
	})
	if err != nil {
		return fmt.Errorf("删除账号失败: %w", err)
	}

	logger.Info("user.deleted", "uid", userID)
	return s.prefs.ClearCurrentUser(ctx)
}

// SendResetCode 生成一个6位一次性验证码，暂存于Redis并发送到用户邮箱。
// 返回的bool表示投递是否成功；邮件失败不会留下可用的验证码。
func (s *Service) SendResetCode(ctx context.Context, username string) (bool, error) {
	u, err := func() (*User, error) {
		var u User
		if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &u, nil
	}()
	if err != nil {
		return false, err
	}
	if u.Email == "" {
		return false, fmt.Errorf("用户 %s 未绑定邮箱", username)
	}
	if s.mailer == nil {
		return false, errors.New("邮件服务未配置")
	}

	code, err := generateCode()
	if err != nil {
		return false, err
	}

	if err := s.rdb.Set(ctx, resetCodeKeyPrefix+username, code, resetCodeTTL).Err(); err != nil {
		return false, fmt.Errorf("暂存验证码失败: %w", err)
	}

	if err := s.mailer.SendCode(u.Email, code); err != nil {
		// 投递失败时收回验证码，调用方得到明确的失败信号
		s.rdb.Del(ctx, resetCodeKeyPrefix+username)
		logger.Warn("user.reset_code_mail_failed", "username", username, "err", err.Error())
		return false, nil
	}
	return true, nil
}

// ResetPassword 用一次性验证码重设密码。验证码用后即焚。
func (s *Service) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	stored, err := s.rdb.Get(ctx, resetCodeKeyPrefix+username).Result()
	if err == redis.Nil || (err == nil && stored != code) {
		return ErrCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("读取验证码失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).
		Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}

	s.rdb.Del(ctx, resetCodeKeyPrefix+username)
	logger.Info("user.password_reset", "username", username)
	return nil
}

// generateCode 生成6位数字验证码。
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("生成验证码失败: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
